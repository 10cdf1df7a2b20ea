// Package graphql exposes a read-only catalog query API alongside the REST
// surface. Mutations stay REST-only.
package graphql

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/services"
	"github.com/arthomesoni/arthome/pkg/response"
)

var errBadID = errors.New("graphql: invalid id")

var participantType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Participant",
	Fields: graphql.Fields{
		"name":         &graphql.Field{Type: graphql.String},
		"email":        &graphql.Field{Type: graphql.String},
		"registeredAt": &graphql.Field{Type: graphql.DateTime},
	},
})

var paintingType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Painting",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if id, ok := p.Source.(map[string]interface{})["id"].(primitive.ObjectID); ok {
					return id.Hex(), nil
				}
				return nil, nil
			},
		},
		"title":       &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"inStock":     &graphql.Field{Type: graphql.Boolean},
		"image":       &graphql.Field{Type: graphql.String},
		"authorName":  &graphql.Field{Type: graphql.String},
	},
})

var workshopType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Workshop",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if id, ok := p.Source.(map[string]interface{})["id"].(primitive.ObjectID); ok {
					return id.Hex(), nil
				}
				return nil, nil
			},
		},
		"title":          &graphql.Field{Type: graphql.String},
		"description":    &graphql.Field{Type: graphql.String},
		"date":           &graphql.Field{Type: graphql.DateTime},
		"duration":       &graphql.Field{Type: graphql.String},
		"price":          &graphql.Field{Type: graphql.Float},
		"availableSpots": &graphql.Field{Type: graphql.Int},
		"image":          &graphql.Field{Type: graphql.String},
		"location":       &graphql.Field{Type: graphql.String},
		"authorName":     &graphql.Field{Type: graphql.String},
		"participants":   &graphql.Field{Type: graphql.NewList(participantType)},
	},
})

// NewSchema builds the catalog query schema over the catalog service.
func NewSchema(catalog *services.CatalogService) (graphql.Schema, error) {
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"paintings": &graphql.Field{
				Type: graphql.NewList(paintingType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					paintings, err := catalog.Paintings(p.Context)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, 0, len(paintings))
					for _, pt := range paintings {
						out = append(out, map[string]interface{}{
							"id":          pt.ID,
							"title":       pt.Title,
							"description": pt.Description,
							"category":    pt.Category,
							"price":       pt.Price,
							"inStock":     pt.InStock,
							"image":       pt.Image,
							"authorName":  pt.AuthorName,
						})
					}
					return out, nil
				},
			},
			"painting": &graphql.Field{
				Type: paintingType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := argObjectID(p)
					if err != nil {
						return nil, err
					}
					pt, err := catalog.Painting(p.Context, id)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"id":          pt.ID,
						"title":       pt.Title,
						"description": pt.Description,
						"category":    pt.Category,
						"price":       pt.Price,
						"inStock":     pt.InStock,
						"image":       pt.Image,
						"authorName":  pt.AuthorName,
					}, nil
				},
			},
			"workshops": &graphql.Field{
				Type: graphql.NewList(workshopType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					workshops, err := catalog.Workshops(p.Context)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, 0, len(workshops))
					for _, ws := range workshops {
						out = append(out, workshopMap(ws))
					}
					return out, nil
				},
			},
			"workshop": &graphql.Field{
				Type: workshopType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := argObjectID(p)
					if err != nil {
						return nil, err
					}
					ws, err := catalog.Workshop(p.Context, id)
					if err != nil {
						return nil, err
					}
					return workshopMap(ws), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

func argObjectID(p graphql.ResolveParams) (primitive.ObjectID, error) {
	raw, _ := p.Args["id"].(string)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, errBadID
	}
	return id, nil
}

func workshopMap(ws models.Workshop) map[string]interface{} {
	participants := make([]map[string]interface{}, 0, len(ws.RegisteredParticipants))
	for _, p := range ws.RegisteredParticipants {
		participants = append(participants, map[string]interface{}{
			"name":         p.Name,
			"email":        p.Email,
			"registeredAt": p.RegisteredAt,
		})
	}
	return map[string]interface{}{
		"id":             ws.ID,
		"title":          ws.Title,
		"description":    ws.Description,
		"date":           ws.Date,
		"duration":       ws.Duration,
		"price":          ws.Price,
		"availableSpots": ws.AvailableSpots,
		"image":          ws.Image,
		"location":       ws.Location,
		"authorName":     ws.AuthorName,
		"participants":   participants,
	}
}

// Handler serves POST (and GET with ?query=) GraphQL requests.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var query string
		var variables map[string]interface{}

		switch r.Method {
		case http.MethodGet:
			query = r.URL.Query().Get("query")
		default:
			var body struct {
				Query     string                 `json:"query"`
				Variables map[string]interface{} `json:"variables"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				response.Message(w, http.StatusBadRequest, "некорректный JSON")
				return
			}
			query = body.Query
			variables = body.Variables
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  query,
			VariableValues: variables,
			Context:        r.Context(),
		})
		response.JSON(w, http.StatusOK, result)
	}
}
