package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/incomecast/internal/artifact"
	"github.com/leapstack-labs/incomecast/internal/predict/predicttest"
	"github.com/leapstack-labs/incomecast/internal/ui/notifier"
)

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		models     *artifact.Provider
		wantCode   int
		wantStatus string
	}{
		{"loaded", predicttest.Provider(), http.StatusOK, "ok"},
		{"unavailable", artifact.NewProvider(artifact.ProviderConfig{Path: "nope.json"}), http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Handler(tt.models, notifier.New())(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var got Status
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantStatus, got.Status)

			if tt.wantCode == http.StatusOK {
				require.NotNil(t, got.Model)
				assert.Equal(t, "test-income", got.Model.Name)
				assert.Equal(t, len(predicttest.Columns), got.Model.Columns)
				assert.Equal(t, "artifact", got.Model.ColumnsSource)
			} else {
				assert.Nil(t, got.Model)
				assert.Contains(t, got.Error, "model unavailable")
			}
		})
	}
}
