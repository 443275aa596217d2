package templates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPAPIResolver_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json/203.0.113.7" {
			_, _ = w.Write([]byte(`{"status":"success","country":"Indonesia","regionName":"Jakarta","city":"Jakarta","timezone":"Asia/Jakarta"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"fail","message":"private range"}`))
	}))
	defer srv.Close()

	r := IPAPIResolver{BaseURL: srv.URL}

	g, err := r.Lookup(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, Geo{City: "Jakarta", Region: "Jakarta", Country: "Indonesia", Timezone: "Asia/Jakarta"}, g)

	_, err = r.Lookup(context.Background(), "10.0.0.1")
	assert.ErrorContains(t, err, "private range")

	_, err = r.Lookup(context.Background(), " ")
	assert.Error(t, err)
}
