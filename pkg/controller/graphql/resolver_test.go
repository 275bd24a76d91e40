package graphql_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	gqlctrl "github.com/salesdesk-io/salesdesk/pkg/controller/graphql"
	httpctrl "github.com/salesdesk-io/salesdesk/pkg/controller/http"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/repository/memory"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path"`
	Extensions map[string]any `json:"extensions"`
}

type GraphQLResponse struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

func setupTestServer(t *testing.T, role types.Role) *httptest.Server {
	t.Helper()

	uc := usecase.New(memory.New(),
		usecase.WithAuth(usecase.NewNoAuthnUseCase("dev", "dev@example.com", "Developer", role)),
	)
	gqlHandler := gqlctrl.NewHandler(gqlctrl.NewResolver(uc))

	testServer := httptest.NewServer(httpctrl.New(uc, httpctrl.WithGraphQL(gqlHandler)))
	t.Cleanup(testServer.Close)
	return testServer
}

func executeGraphQL(t *testing.T, serverURL string, query string, variables map[string]any) *GraphQLResponse {
	t.Helper()

	body, err := json.Marshal(GraphQLRequest{Query: query, Variables: variables})
	gt.NoError(t, err).Required()

	resp, err := http.Post(serverURL+"/graphql", "application/json", bytes.NewReader(body))
	gt.NoError(t, err).Required()
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var gqlResp GraphQLResponse
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&gqlResp)).Required()
	return &gqlResp
}

// decodeData fails the test when the response carries errors
func decodeData(t *testing.T, resp *GraphQLResponse, v any) {
	t.Helper()
	gt.A(t, resp.Errors).Length(0).Required()
	gt.NoError(t, json.Unmarshal(resp.Data, v)).Required()
}

func createScheme(t *testing.T, serverURL, name string) string {
	t.Helper()
	resp := executeGraphQL(t, serverURL, `
		mutation($input: SchemeInput!) {
			createScheme(input: $input) { scheme { id } notification { level message } }
		}`, map[string]any{
		"input": map[string]any{
			"name":      name,
			"startDate": "2026-01-01",
			"endDate":   "2026-12-31",
			"active":    true,
		},
	})

	var data struct {
		CreateScheme struct {
			Scheme struct {
				ID string `json:"id"`
			} `json:"scheme"`
			Notification usecase.Notification `json:"notification"`
		} `json:"createScheme"`
	}
	decodeData(t, resp, &data)
	gt.Value(t, data.CreateScheme.Notification.Level).Equal(usecase.NotifySuccess)
	gt.String(t, data.CreateScheme.Scheme.ID).NotEqual("")
	return data.CreateScheme.Scheme.ID
}

const createClaimMutation = `
	mutation($input: ExpenseClaimInput!) {
		createExpenseClaim(input: $input) {
			claim { id type amount status scheme { name } }
			notification { level message }
		}
	}`

func claimVariables(schemeID, claimType, amount string) map[string]any {
	return map[string]any{
		"input": map[string]any{
			"schemeId": schemeID,
			"type":     claimType,
			"date":     "2026-06-01",
			"amount":   amount,
		},
	}
}

func TestQueryMeAndNavigationHTTP(t *testing.T) {
	srv := setupTestServer(t, types.RoleSalesRep)

	resp := executeGraphQL(t, srv.URL, `{
		me { sub email role }
		navigation { label path children { label } }
		entities { name fields { key optionsFrom } }
	}`, nil)

	var data struct {
		Me struct {
			Sub   string `json:"sub"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"me"`
		Navigation []struct {
			Label string `json:"label"`
		} `json:"navigation"`
		Entities []struct {
			Name   string `json:"name"`
			Fields []struct {
				Key         string  `json:"key"`
				OptionsFrom *string `json:"optionsFrom"`
			} `json:"fields"`
		} `json:"entities"`
	}
	decodeData(t, resp, &data)

	gt.String(t, data.Me.Sub).Equal("dev")
	gt.String(t, data.Me.Email).Equal("dev@example.com")
	gt.String(t, data.Me.Role).Equal("sales_rep")
	gt.A(t, data.Navigation).Longer(0)

	var products bool
	for _, e := range data.Entities {
		if e.Name != "products" {
			continue
		}
		products = true
		for _, f := range e.Fields {
			if f.Key == "category_id" {
				gt.Value(t, f.OptionsFrom).NotNil().Required()
				gt.String(t, *f.OptionsFrom).Equal("categories")
			}
		}
	}
	gt.Bool(t, products).True()
}

func TestRecordMutationsHTTP(t *testing.T) {
	srv := setupTestServer(t, types.RoleAdmin)

	const createRecord = `
		mutation($entity: String!, $values: JSON!) {
			createRecord(entity: $entity, values: $values) {
				record { id values references { field entity label } }
				notification { level message }
			}
		}`

	type recordResult struct {
		CreateRecord struct {
			Record struct {
				ID         string         `json:"id"`
				Values     map[string]any `json:"values"`
				References []struct {
					Field  string `json:"field"`
					Entity string `json:"entity"`
					Label  string `json:"label"`
				} `json:"references"`
			} `json:"record"`
			Notification usecase.Notification `json:"notification"`
		} `json:"createRecord"`
	}

	var category recordResult
	decodeData(t, executeGraphQL(t, srv.URL, createRecord, map[string]any{
		"entity": "categories",
		"values": map[string]any{"name": "Drinks"},
	}), &category)
	gt.String(t, category.CreateRecord.Record.ID).NotEqual("")
	gt.Value(t, category.CreateRecord.Notification.Level).Equal(usecase.NotifySuccess)

	t.Run("references resolve to the label of the referenced record", func(t *testing.T) {
		var product recordResult
		decodeData(t, executeGraphQL(t, srv.URL, createRecord, map[string]any{
			"entity": "products",
			"values": map[string]any{
				"name":        "Cola",
				"sku":         "COLA-1",
				"category_id": category.CreateRecord.Record.ID,
				"price":       "1.50",
			},
		}), &product)

		refs := product.CreateRecord.Record.References
		gt.A(t, refs).Length(1).Required()
		gt.String(t, refs[0].Field).Equal("category_id")
		gt.String(t, refs[0].Entity).Equal("categories")
		gt.String(t, refs[0].Label).Equal("Drinks")
	})

	t.Run("validation errors carry the failing fields", func(t *testing.T) {
		resp := executeGraphQL(t, srv.URL, createRecord, map[string]any{
			"entity": "products",
			"values": map[string]any{
				"name":        "Water",
				"sku":         "WATER-1",
				"category_id": category.CreateRecord.Record.ID,
				"price":       "NaN",
			},
		})
		gt.A(t, resp.Errors).Length(1).Required()
		gotErr := resp.Errors[0]
		gt.String(t, gotErr.Message).Equal("Please correct the highlighted fields")
		gt.Value(t, gotErr.Extensions["code"]).Equal(gqlctrl.CodeBadUserInput)
		fields, ok := gotErr.Extensions["fields"].(map[string]any)
		gt.Bool(t, ok).True().Required()
		gt.Value(t, fields["price"]).Equal("must be a number")
	})

	t.Run("a missing record is null", func(t *testing.T) {
		resp := executeGraphQL(t, srv.URL, `
			query($id: ID!) { record(entity: "products", id: $id) { id } }`,
			map[string]any{"id": "missing"})

		var data struct {
			Record *struct {
				ID string `json:"id"`
			} `json:"record"`
		}
		decodeData(t, resp, &data)
		gt.Value(t, data.Record).Nil()
	})

	t.Run("an unknown entity is not found", func(t *testing.T) {
		resp := executeGraphQL(t, srv.URL, `{ records(entity: "spaceships") { id } }`, nil)
		gt.A(t, resp.Errors).Length(1).Required()
		gt.Value(t, resp.Errors[0].Extensions["code"]).Equal(gqlctrl.CodeNotFound)
	})
}

func TestExpenseClaimMutationsHTTP(t *testing.T) {
	srv := setupTestServer(t, types.RoleAdmin)
	schemeID := createScheme(t, srv.URL, "Summer push")

	var created struct {
		CreateExpenseClaim struct {
			Claim struct {
				ID     string `json:"id"`
				Type   string `json:"type"`
				Amount string `json:"amount"`
				Status string `json:"status"`
				Scheme struct {
					Name string `json:"name"`
				} `json:"scheme"`
			} `json:"claim"`
			Notification usecase.Notification `json:"notification"`
		} `json:"createExpenseClaim"`
	}
	decodeData(t, executeGraphQL(t, srv.URL, createClaimMutation, claimVariables(schemeID, "Fuel", "15.00")), &created)

	claim := created.CreateExpenseClaim.Claim
	gt.String(t, claim.Type).Equal("Fuel")
	gt.String(t, claim.Amount).Equal("15.00")
	gt.String(t, claim.Status).Equal("pending")
	gt.String(t, claim.Scheme.Name).Equal("Summer push")
	gt.String(t, created.CreateExpenseClaim.Notification.Message).Equal("Expense claim submitted")

	t.Run("duplicate claim is a conflict", func(t *testing.T) {
		resp := executeGraphQL(t, srv.URL, createClaimMutation, claimVariables(schemeID, "Fuel", "15.00"))
		gt.A(t, resp.Errors).Length(1).Required()
		gt.String(t, resp.Errors[0].Message).Equal(usecase.ErrDuplicateClaim.Error())
		gt.Value(t, resp.Errors[0].Extensions["code"]).Equal(gqlctrl.CodeConflict)
		gt.A(t, resp.Errors[0].Path).Length(1).Required()
		gt.Value(t, resp.Errors[0].Path[0]).Equal("createExpenseClaim")
	})

	t.Run("unknown scheme is a field error", func(t *testing.T) {
		resp := executeGraphQL(t, srv.URL, createClaimMutation, claimVariables("no-such-scheme", "Taxi", "9.00"))
		gt.A(t, resp.Errors).Length(1).Required()
		gt.Value(t, resp.Errors[0].Extensions["code"]).Equal(gqlctrl.CodeBadUserInput)
		fields, ok := resp.Errors[0].Extensions["fields"].(map[string]any)
		gt.Bool(t, ok).True().Required()
		gt.Value(t, fields["scheme_id"]).Equal("must be one of the available options")
	})

	t.Run("approval updates scheme totals", func(t *testing.T) {
		resp := executeGraphQL(t, srv.URL, `
			mutation($id: ID!) {
				changeExpenseClaimStatus(id: $id, status: approved) { claim { status } }
			}`, map[string]any{"id": claim.ID})
		var changed struct {
			ChangeExpenseClaimStatus struct {
				Claim struct {
					Status string `json:"status"`
				} `json:"claim"`
			} `json:"changeExpenseClaimStatus"`
		}
		decodeData(t, resp, &changed)
		gt.String(t, changed.ChangeExpenseClaimStatus.Claim.Status).Equal("approved")

		resp = executeGraphQL(t, srv.URL, `
			query($id: ID!) {
				scheme(id: $id) {
					totals { claimsGenerated claimsApproved totalPayout }
					approved: claims(status: approved) { id }
					pending: claims(status: pending) { id }
				}
			}`, map[string]any{"id": schemeID})
		var data struct {
			Scheme struct {
				Totals struct {
					ClaimsGenerated int    `json:"claimsGenerated"`
					ClaimsApproved  int    `json:"claimsApproved"`
					TotalPayout     string `json:"totalPayout"`
				} `json:"totals"`
				Approved []struct {
					ID string `json:"id"`
				} `json:"approved"`
				Pending []struct {
					ID string `json:"id"`
				} `json:"pending"`
			} `json:"scheme"`
		}
		decodeData(t, resp, &data)
		gt.Number(t, data.Scheme.Totals.ClaimsGenerated).Equal(1)
		gt.Number(t, data.Scheme.Totals.ClaimsApproved).Equal(1)
		gt.String(t, data.Scheme.Totals.TotalPayout).Equal("15.00")
		gt.A(t, data.Scheme.Approved).Length(1).Required()
		gt.String(t, data.Scheme.Approved[0].ID).Equal(claim.ID)
		gt.A(t, data.Scheme.Pending).Length(0)
	})

	t.Run("delete returns the claim ID", func(t *testing.T) {
		resp := executeGraphQL(t, srv.URL, `
			mutation($id: ID!) { deleteExpenseClaim(id: $id) { id notification { level } } }`,
			map[string]any{"id": claim.ID})
		var data struct {
			DeleteExpenseClaim struct {
				ID           string               `json:"id"`
				Notification usecase.Notification `json:"notification"`
			} `json:"deleteExpenseClaim"`
		}
		decodeData(t, resp, &data)
		gt.String(t, data.DeleteExpenseClaim.ID).Equal(claim.ID)
		gt.Value(t, data.DeleteExpenseClaim.Notification.Level).Equal(usecase.NotifySuccess)
	})
}

func TestViewerCannotMutateHTTP(t *testing.T) {
	srv := setupTestServer(t, types.RoleViewer)

	resp := executeGraphQL(t, srv.URL, `
		mutation { createRecord(entity: "categories", values: {name: "Snacks"}) { record { id } } }`, nil)
	gt.A(t, resp.Errors).Length(1).Required()
	gt.Value(t, resp.Errors[0].Extensions["code"]).Equal(gqlctrl.CodeForbidden)
	gt.String(t, string(resp.Data)).Equal("null")
}

func TestIntrospectionHTTP(t *testing.T) {
	srv := setupTestServer(t, types.RoleViewer)

	resp := executeGraphQL(t, srv.URL, `{
		__schema { queryType { name } mutationType { name } }
		__type(name: "ExpenseClaim") { kind fields { name } }
	}`, nil)

	var data struct {
		Schema struct {
			QueryType struct {
				Name string `json:"name"`
			} `json:"queryType"`
			MutationType struct {
				Name string `json:"name"`
			} `json:"mutationType"`
		} `json:"__schema"`
		Type struct {
			Kind   string `json:"kind"`
			Fields []struct {
				Name string `json:"name"`
			} `json:"fields"`
		} `json:"__type"`
	}
	decodeData(t, resp, &data)
	gt.String(t, data.Schema.QueryType.Name).Equal("Query")
	gt.String(t, data.Schema.MutationType.Name).Equal("Mutation")
	gt.String(t, data.Type.Kind).Equal("OBJECT")

	names := make([]string, len(data.Type.Fields))
	for i, f := range data.Type.Fields {
		names[i] = f.Name
	}
	gt.A(t, names).Has("amount")
	gt.A(t, names).Has("scheme")
}

func TestInvalidQueryHTTP(t *testing.T) {
	srv := setupTestServer(t, types.RoleViewer)

	body, err := json.Marshal(GraphQLRequest{Query: `{ schemes { nope } }`})
	gt.NoError(t, err).Required()
	resp, err := http.Post(srv.URL+"/graphql", "application/json", bytes.NewReader(body))
	gt.NoError(t, err).Required()
	defer func() {
		_ = resp.Body.Close()
	}()
	gt.Number(t, resp.StatusCode).Equal(http.StatusUnprocessableEntity)

	var gqlResp GraphQLResponse
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&gqlResp)).Required()
	gt.A(t, gqlResp.Errors).Longer(0).Required()
	gt.Value(t, gqlResp.Errors[0].Extensions["code"]).Equal("GRAPHQL_VALIDATION_FAILED")
}
