package bridge

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilikoi/lilikoi-go/internal/config"
)

const testAddress = "0x1111111111111111111111111111111111111111"

func newTestClient(baseURL string) *Client {
	return NewClient(config.BridgeConfig{
		BaseURL:    baseURL,
		TimeoutSec: 5,
	}, logrus.New())
}

func TestClient_Prepare(t *testing.T) {
	t.Run("deposit returns transaction data", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			expected := fmt.Sprintf("/%s/deposit/edu/10", testAddress)
			assert.Equal(t, expected, r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{"to":"0x590044e628ea1B9C10a86738Cf7a7eeF52D031B8","data":"0xabcdef","value":"0","chainId":42161,"description":"Bridge 10 EDU"}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		tx, err := client.Prepare(context.Background(), ActionDeposit, testAddress, "10")
		require.NoError(t, err)

		assert.Equal(t, "0x590044e628ea1B9C10a86738Cf7a7eeF52D031B8", tx.To)
		assert.Equal(t, "0xabcdef", tx.Data)
		assert.Equal(t, "0", tx.Value)
		assert.Equal(t, int64(42161), tx.ChainID)
	})

	t.Run("numeric value is normalized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"to":"0x590044e628ea1B9C10a86738Cf7a7eeF52D031B8","data":"0x","value":1000}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		tx, err := client.Prepare(context.Background(), ActionWithdraw, testAddress, "5")
		require.NoError(t, err)
		assert.Equal(t, "1000", tx.Value)
	})

	t.Run("error field on 200 is a failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":null,"error":"insufficient liquidity"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		_, err := client.Prepare(context.Background(), ActionDeposit, testAddress, "10")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient liquidity")
	})

	t.Run("non-2xx status is a failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`backend exploded`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		_, err := client.Prepare(context.Background(), ActionApprove, testAddress, "10")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("missing destination rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"data":"0xabc"}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		_, err := client.Prepare(context.Background(), ActionDeposit, testAddress, "10")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "destination")
	})

	t.Run("invalid inputs rejected without network call", func(t *testing.T) {
		client := newTestClient("http://127.0.0.1:0")

		_, err := client.Prepare(context.Background(), Action("burn"), testAddress, "10")
		assert.Error(t, err)

		_, err = client.Prepare(context.Background(), ActionDeposit, "not-an-address", "10")
		assert.Error(t, err)

		_, err = client.Prepare(context.Background(), ActionDeposit, testAddress, " ")
		assert.Error(t, err)
	})
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction("approve"))
	assert.True(t, ValidAction("deposit"))
	assert.True(t, ValidAction("withdraw"))
	assert.False(t, ValidAction("transfer"))
	assert.False(t, ValidAction(""))
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "0", normalizeValue(nil))
	assert.Equal(t, "0", normalizeValue([]byte(`null`)))
	assert.Equal(t, "123", normalizeValue([]byte(`"123"`)))
	assert.Equal(t, "123", normalizeValue([]byte(`123`)))
}
