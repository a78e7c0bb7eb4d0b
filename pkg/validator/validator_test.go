package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingBody struct {
	StoreID   string `json:"store_id" validate:"required,keypart"`
	ProductID string `json:"product_id" validate:"required,keypart"`
	Price     int64  `json:"price" validate:"gte=0"`
	Sort      string `json:"sort,omitempty" validate:"omitempty,oneof=relevance price_asc price_desc"`
	Internal  string `json:"-" validate:"max=3"`
}

type bulkBody struct {
	Listings []listingBody `json:"listings" validate:"required,min=1,dive"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(listingBody{StoreID: "s1", ProductID: "p1", Price: 450}))
}

func TestValidate_ReportsJSONNames(t *testing.T) {
	fields := fieldsOf(t, Validate(listingBody{Price: -1, Sort: "cheapest"}))

	assert.Equal(t, "is required", fields["store_id"])
	assert.Equal(t, "is required", fields["product_id"])
	assert.Equal(t, "must be greater than or equal to 0", fields["price"])
	assert.Equal(t, "must be one of: relevance price_asc price_desc", fields["sort"])
}

func TestValidate_KeyPart(t *testing.T) {
	fields := fieldsOf(t, Validate(listingBody{StoreID: "s:1", ProductID: "p1"}))
	assert.Equal(t, "must not contain ':'", fields["store_id"])
}

func TestValidate_HiddenFieldUsesGoName(t *testing.T) {
	fields := fieldsOf(t, Validate(listingBody{StoreID: "s1", ProductID: "p1", Internal: "toolong"}))
	assert.Equal(t, "must be at most 3", fields["Internal"])
}

func TestValidate_NestedPaths(t *testing.T) {
	err := Validate(bulkBody{Listings: []listingBody{
		{StoreID: "s1", ProductID: "p1"},
		{StoreID: "s1"},
	}})
	fields := fieldsOf(t, err)
	assert.Equal(t, "is required", fields["listings[1].product_id"])
	assert.Contains(t, err.Error(), "field 'listings[1].product_id' is required")

	fields = fieldsOf(t, Validate(bulkBody{Listings: []listingBody{}}))
	assert.Equal(t, "must be at least 1", fields["listings"])
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"store_id":"s1","product_id":"p1","price":10}`, ""},
		{"invalid json", `{"store_id":`, "decode request body"},
		{"empty body", ``, "empty body"},
		{"fails validation", `{"store_id":"s1"}`, "product_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/listings", strings.NewReader(tt.body))
			var dst listingBody
			err := DecodeAndValidate(req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "s1", dst.StoreID)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeAndValidate_BodyTooLarge(t *testing.T) {
	big := `{"store_id":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))

	var dst listingBody
	require.Error(t, DecodeAndValidate(req, &dst))
}
