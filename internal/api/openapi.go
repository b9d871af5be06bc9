package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/phrazzld/leancoffee-api/internal/platform/logger"
	"gopkg.in/yaml.v3"
)

type openAPIDocument struct {
	OpenAPI    string              `yaml:"openapi"`
	Info       openAPIInfo         `yaml:"info"`
	Servers    []openAPIServer     `yaml:"servers"`
	Tags       []openAPITag        `yaml:"tags"`
	Paths      map[string]pathItem `yaml:"paths"`
	Components components          `yaml:"components"`
}

type openAPIInfo struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}

type openAPIServer struct {
	URL string `yaml:"url"`
}

type openAPITag struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type pathItem struct {
	Parameters []parameter `yaml:"parameters,omitempty"`
	Get        *operation  `yaml:"get,omitempty"`
	Post       *operation  `yaml:"post,omitempty"`
	Put        *operation  `yaml:"put,omitempty"`
	Delete     *operation  `yaml:"delete,omitempty"`
}

type operation struct {
	Tags        []string            `yaml:"tags"`
	Summary     string              `yaml:"summary"`
	OperationID string              `yaml:"operationId"`
	RequestBody *requestBody        `yaml:"requestBody,omitempty"`
	Responses   map[string]response `yaml:"responses"`
}

type parameter struct {
	Name     string `yaml:"name"`
	In       string `yaml:"in"`
	Required bool   `yaml:"required"`
	Schema   schema `yaml:"schema"`
}

type requestBody struct {
	Required bool                 `yaml:"required"`
	Content  map[string]mediaType `yaml:"content"`
}

type response struct {
	Description string               `yaml:"description"`
	Content     map[string]mediaType `yaml:"content,omitempty"`
}

type mediaType struct {
	Schema schema `yaml:"schema"`
}

type schema struct {
	Ref        string            `yaml:"$ref,omitempty"`
	Type       string            `yaml:"type,omitempty"`
	OneOf      []schema          `yaml:"oneOf,omitempty"`
	Items      *schema           `yaml:"items,omitempty"`
	Required   []string          `yaml:"required,omitempty"`
	Properties map[string]schema `yaml:"properties,omitempty"`
	Example    any               `yaml:"example,omitempty"`
}

type components struct {
	Schemas map[string]schema `yaml:"schemas"`
}

func ref(name string) schema {
	return schema{Ref: "#/components/schemas/" + name}
}

func jsonContent(s schema) map[string]mediaType {
	return map[string]mediaType{"application/json": {Schema: s}}
}

func errorResponse(description string) response {
	return response{Description: description, Content: jsonContent(ref("ApiError"))}
}

// buildOpenAPIDocument describes the board API as served under /boards.
func buildOpenAPIDocument() openAPIDocument {
	boardIDParam := parameter{Name: "board_id", In: "path", Required: true, Schema: schema{Type: "string"}}
	cardIDParam := parameter{Name: "card_id", In: "path", Required: true, Schema: schema{Type: "integer"}}

	return openAPIDocument{
		OpenAPI: "3.0.3",
		Info: openAPIInfo{
			Title:       "Lean Coffee Server",
			Description: "Create and update Lean Coffee boards",
			Version:     "1.0.0",
		},
		Servers: []openAPIServer{{URL: "/"}, {URL: "/v1"}},
		Tags: []openAPITag{
			{Name: "boards", Description: "Operations about boards"},
			{Name: "cards", Description: "Operations about cards"},
		},
		Paths: map[string]pathItem{
			"/boards": {
				Post: &operation{
					Tags:        []string{"boards"},
					Summary:     "Create a new board",
					OperationID: "createBoard",
					RequestBody: &requestBody{Content: jsonContent(ref("NewBoardRequest"))},
					Responses: map[string]response{
						"201": {Description: "The new board", Content: jsonContent(ref("Board"))},
						"400": errorResponse("Malformed request body"),
						"409": errorResponse("A board with this ID already exists"),
					},
				},
				Get: &operation{
					Tags:        []string{"boards"},
					Summary:     "Fetch all existing boards",
					OperationID: "listBoards",
					Responses: map[string]response{
						"200": {
							Description: "All the boards",
							Content:     jsonContent(schema{Type: "array", Items: &schema{Ref: "#/components/schemas/Board"}}),
						},
					},
				},
			},
			"/boards/{board_id}": {
				Parameters: []parameter{boardIDParam},
				Get: &operation{
					Tags:        []string{"boards"},
					Summary:     "Fetch a single board",
					OperationID: "getBoard",
					Responses: map[string]response{
						"200": {Description: "The matching board", Content: jsonContent(ref("Board"))},
						"404": errorResponse("No matching board found"),
					},
				},
			},
			"/boards/{board_id}/cards": {
				Parameters: []parameter{boardIDParam},
				Post: &operation{
					Tags:        []string{"cards"},
					Summary:     "Add a new card to a board",
					OperationID: "addCard",
					RequestBody: &requestBody{Required: true, Content: jsonContent(ref("CardContentRequest"))},
					Responses: map[string]response{
						"201": {Description: "The new card", Content: jsonContent(ref("Card"))},
						"400": errorResponse("Card content is missing or empty"),
						"404": errorResponse("No matching board found"),
					},
				},
			},
			"/boards/{board_id}/cards/{card_id}": {
				Parameters: []parameter{boardIDParam, cardIDParam},
				Put: &operation{
					Tags:        []string{"cards"},
					Summary:     "Update an existing card",
					OperationID: "updateCard",
					RequestBody: &requestBody{Required: true, Content: jsonContent(ref("CardContentRequest"))},
					Responses: map[string]response{
						"204": {Description: "Card updated successfully"},
						"400": errorResponse("Card content is missing or empty"),
						"404": errorResponse("No matching board or card found"),
					},
				},
				Delete: &operation{
					Tags:        []string{"cards"},
					Summary:     "Delete a card",
					OperationID: "deleteCard",
					Responses: map[string]response{
						"204": {Description: "Delete was successful"},
						"404": errorResponse("No matching board found"),
					},
				},
			},
		},
		Components: components{
			Schemas: map[string]schema{
				"Board": {
					Type:     "object",
					Required: []string{"id", "cardSequence", "cards"},
					Properties: map[string]schema{
						"id":           {Type: "string"},
						"cardSequence": {Type: "integer"},
						"cards":        {Type: "array", Items: &schema{Ref: "#/components/schemas/Card"}},
					},
				},
				"Card": {
					Type:     "object",
					Required: []string{"id", "content"},
					Properties: map[string]schema{
						"id":      {Type: "integer"},
						"content": {Type: "string"},
					},
				},
				"NewBoardRequest": {
					Type: "object",
					Properties: map[string]schema{
						"id": {OneOf: []schema{{Type: "string"}, {Type: "integer"}}, Example: "team-retro"},
					},
				},
				"CardContentRequest": {
					Type:     "object",
					Required: []string{"content"},
					Properties: map[string]schema{
						"content": {Type: "string", Example: "Should we move standup?"},
					},
				},
				"ApiError": {
					Type:     "object",
					Required: []string{"code", "message"},
					Properties: map[string]schema{
						"code":    {Type: "string", Example: CodeBoardNotFound},
						"message": {Type: "string"},
					},
				},
			},
		},
	}
}

var renderOpenAPI = sync.OnceValues(func() ([]byte, error) {
	return yaml.Marshal(buildOpenAPIDocument())
})

// OpenAPIHandler serves the API description as YAML.
func OpenAPIHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := renderOpenAPI()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Error("failed to write API document", slog.String("error", err.Error()))
	}
}
