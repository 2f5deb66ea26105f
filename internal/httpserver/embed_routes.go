package httpserver

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/embedworks/embedderd/internal/app"
	"github.com/embedworks/embedderd/internal/httpserver/httputil"
	"github.com/embedworks/embedderd/internal/models"
	"github.com/embedworks/embedderd/internal/services/embedding"
)

type embedHandler struct {
	svc     *embedding.Service
	started time.Time
}

func registerEmbedRoutes(app *fiber.App, container *app.Container) {
	handler := &embedHandler{
		svc:     container.Embeddings,
		started: time.Now().UTC(),
	}

	app.Post("/embed", handler.embed)

	v1 := app.Group("/v1")
	v1.Get("/models", handler.listModels)
	v1.Post("/embeddings", handler.embeddings)
}

type embedRequest struct {
	Texts json.RawMessage `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// embed serves the native endpoint: a texts array in, a vectors array out,
// positions matching one to one.
func (h *embedHandler) embed(c *fiber.Ctx) error {
	var req embedRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
	}
	texts, err := parseTexts(req.Texts)
	if err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.svc.EmbedBatch(c.UserContext(), texts)
	if err != nil {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "embedding computation failed")
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		vectors[i] = emb.Vector
	}
	return c.JSON(embedResponse{Embeddings: vectors})
}

func parseTexts(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New("texts is required")
	}

	var texts []string
	if err := json.Unmarshal(raw, &texts); err != nil {
		return nil, errors.New("texts must be an array of strings")
	}
	return texts, nil
}

type openAIEmbeddingRequest struct {
	Model string          `json:"model"`
	Input json.RawMessage `json:"input"`
}

type openAIEmbedding struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
	Object    string    `json:"object"`
}

type openAIUsage struct {
	PromptTokens int32 `json:"prompt_tokens"`
	TotalTokens  int32 `json:"total_tokens"`
}

type openAIEmbeddingResponse struct {
	Object string            `json:"object"`
	Model  string            `json:"model"`
	Data   []openAIEmbedding `json:"data"`
	Usage  openAIUsage       `json:"usage"`
}

type openAIModel struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
	Created int64  `json:"created"`
}

type openAIModelList struct {
	Object string        `json:"object"`
	Data   []openAIModel `json:"data"`
}

// embeddings serves the OpenAI-compatible endpoint for the single hosted
// model. Requests naming any other model get a 404.
func (h *embedHandler) embeddings(c *fiber.Ctx) error {
	var req openAIEmbeddingRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
	}

	served := h.svc.Model()
	if model := strings.TrimSpace(req.Model); model != "" && model != served.ID {
		return httputil.WriteError(c, fiber.StatusNotFound, "model not found")
	}

	inputs, err := parseEmbeddingInput(req.Input)
	if err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.svc.EmbedBatch(c.UserContext(), inputs)
	if err != nil {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "embedding computation failed")
	}
	return c.JSON(convertEmbeddingsResult(result))
}

func parseEmbeddingInput(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New("input is required")
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return []string{str}, nil
	}

	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}

	return nil, errors.New("input must be string or array of strings")
}

func convertEmbeddingsResult(result models.EmbeddingsResult) openAIEmbeddingResponse {
	data := make([]openAIEmbedding, 0, len(result.Embeddings))
	for _, emb := range result.Embeddings {
		data = append(data, openAIEmbedding{
			Index:     emb.Index,
			Embedding: emb.Vector,
			Object:    "embedding",
		})
	}

	return openAIEmbeddingResponse{
		Object: "list",
		Model:  result.Model,
		Data:   data,
		Usage: openAIUsage{
			PromptTokens: result.PromptTokens,
			TotalTokens:  result.PromptTokens,
		},
	}
}

func (h *embedHandler) listModels(c *fiber.Ctx) error {
	served := h.svc.Model()
	return c.JSON(openAIModelList{
		Object: "list",
		Data: []openAIModel{{
			ID:      served.ID,
			Object:  "model",
			OwnedBy: served.Backend,
			Created: h.started.Unix(),
		}},
	})
}
