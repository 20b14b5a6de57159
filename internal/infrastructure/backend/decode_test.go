package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posterminal/internal/domain"
)

func TestDecodeList_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "bare array", body: `[{"productId":"p1"},{"productId":"p2"}]`, want: 2},
		{name: "data envelope", body: `{"data":[{"productId":"p1"}],"pagination":{"page":1}}`, want: 1},
		{name: "items envelope", body: `{"items":[{"productId":"p1"},{"productId":"p2"},{"productId":"p3"}]}`, want: 3},
		{name: "empty array", body: ` [] `, want: 0},
		{name: "data preferred over items", body: `{"data":[],"items":[{"productId":"p1"}]}`, want: 0},
		{name: "data not an array falls through to items", body: `{"data":{"x":1},"items":[{"productId":"p1"}]}`, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeList[domain.StockBalance]([]byte(tt.body))
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestDecodeList_UnexpectedShape(t *testing.T) {
	bodies := []string{
		``,
		`null`,
		`"hello"`,
		`42`,
		`{"data":{"productId":"p1"}}`,
		`{"results":[]}`,
		`[{"productId":`,
		`[{"onHandQty":"lots"}]`,
	}

	for _, body := range bodies {
		_, err := DecodeList[domain.StockBalance]([]byte(body))
		assert.ErrorIs(t, err, ErrUnexpectedShape, "body %q", body)
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "stock too low", errorMessage([]byte(`{"message":"stock too low"}`)))
	assert.Equal(t, "bad request", errorMessage([]byte(`{"error":"bad request"}`)))
	assert.Equal(t, "gateway down", errorMessage([]byte("gateway down\n")))
}
