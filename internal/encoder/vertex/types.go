package vertex

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type vertexPredictInstance struct {
	Content string `json:"content"`
}

type vertexPredictRequest struct {
	Instances []vertexPredictInstance `json:"instances"`
}

// vertexPrediction accepts both response shapes publisher models use: a
// flat values array and the gecko-style nested embeddings object.
type vertexPrediction struct {
	Values     []float64 `json:"values"`
	Embeddings struct {
		Values []float64 `json:"values"`
	} `json:"embeddings"`
}

func (p vertexPrediction) vector() []float64 {
	if len(p.Embeddings.Values) > 0 {
		return p.Embeddings.Values
	}
	return p.Values
}

type vertexPredictResponse struct {
	Predictions []vertexPrediction `json:"predictions"`
}

type vertexAPIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr vertexAPIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("vertex api error %d (%s): %s", apiErr.Error.Code, apiErr.Error.Status, apiErr.Error.Message)
	}
	return fmt.Errorf("vertex api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
