package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCounters(t *testing.T) {
	before := testutil.ToFloat64(BundlesCreated)
	BundlesCreated.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(BundlesCreated))

	ResponsesSubmitted.WithLabelValues("LOVE_IT").Inc()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gift_bundles_created_total")
	assert.Contains(t, string(body), `gift_responses_submitted_total{tag="LOVE_IT"}`)
}
