package graphql

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/introspection"
	"github.com/m-mizutani/goerr/v2"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

//go:embed schema.graphqls
var schemaSource string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: schemaSource})

// fieldFunc resolves one field of obj. The returned value is rendered
// according to the field type in the schema.
type fieldFunc func(ctx context.Context, obj any, args map[string]any) (any, error)

// executableSchema walks the selection set of an operation and renders the
// values returned by the field table. Scalars, enums and lists are rendered
// from the schema types, so resolvers return plain domain values.
type executableSchema struct {
	schema *ast.Schema
	fields map[string]map[string]fieldFunc
}

var _ graphql.ExecutableSchema = &executableSchema{}

// NewExecutableSchema binds the resolver to the schema
func NewExecutableSchema(r *Resolver) graphql.ExecutableSchema {
	return &executableSchema{
		schema: parsedSchema,
		fields: r.fields(),
	}
}

func (e *executableSchema) Schema() *ast.Schema {
	return e.schema
}

func (e *executableSchema) Complexity(_ context.Context, _, _ string, _ int, _ map[string]any) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)

	var root string
	switch opCtx.Operation.Operation {
	case ast.Query:
		root = e.schema.Query.Name
	case ast.Mutation:
		root = e.schema.Mutation.Name
	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}

	// Mutations run their root fields one after another
	serial := opCtx.Operation.Operation == ast.Mutation
	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false

		data, _ := e.object(ctx, root, nil, opCtx.Operation.SelectionSet, serial)
		var buf bytes.Buffer
		data.MarshalGQL(&buf)
		return &graphql.Response{Data: buf.Bytes()}
	}
}

// object renders the selected fields of obj. It returns false when a
// non-null field came out null, in which case the object itself is null.
func (e *executableSchema) object(ctx context.Context, typeName string, obj any, sel ast.SelectionSet, serial bool) (graphql.Marshaler, bool) {
	opCtx := graphql.GetOperationContext(ctx)
	fields := graphql.CollectFields(opCtx, sel, []string{typeName})
	out := graphql.NewFieldSet(fields)

	for i, field := range fields {
		if field.Name == "__typename" {
			out.Values[i] = graphql.MarshalString(typeName)
			continue
		}
		resolve := func(ctx context.Context) graphql.Marshaler {
			m, ok := e.field(ctx, typeName, obj, field)
			if !ok {
				atomic.AddUint32(&out.Invalids, 1)
			}
			return m
		}
		if serial {
			out.Values[i] = resolve(ctx)
		} else {
			out.Concurrently(i, resolve)
		}
	}
	out.Dispatch(ctx)

	if atomic.LoadUint32(&out.Invalids) > 0 {
		return graphql.Null, false
	}
	return out, true
}

func (e *executableSchema) field(ctx context.Context, typeName string, obj any, field graphql.CollectedField) (ret graphql.Marshaler, valid bool) {
	opCtx := graphql.GetOperationContext(ctx)
	def := field.Definition
	fc := &graphql.FieldContext{
		Object:     typeName,
		Field:      field,
		Args:       field.ArgumentMap(opCtx.Variables),
		IsMethod:   true,
		IsResolver: true,
	}
	ctx = graphql.WithFieldContext(ctx, fc)

	defer func() {
		if r := recover(); r != nil {
			graphql.AddError(ctx, graphql.Recover(ctx, r))
			ret, valid = graphql.Null, !def.Type.NonNull
		}
	}()

	resolve, err := e.resolver(ctx, typeName, field.Name)
	if err != nil {
		graphql.AddError(ctx, err)
		return graphql.Null, !def.Type.NonNull
	}

	res, err := opCtx.ResolverMiddleware(ctx, func(ctx context.Context) (any, error) {
		return resolve(ctx, obj, fc.Args)
	})
	if err != nil {
		graphql.AddError(ctx, err)
		return graphql.Null, !def.Type.NonNull
	}
	fc.Result = res

	return e.value(ctx, def.Type, res, field.Selections)
}

func (e *executableSchema) resolver(ctx context.Context, typeName, fieldName string) (fieldFunc, error) {
	if typeName == e.schema.Query.Name && strings.HasPrefix(fieldName, "__") {
		if graphql.GetOperationContext(ctx).DisableIntrospection {
			return nil, gqlerror.Errorf("introspection disabled")
		}
		switch fieldName {
		case "__schema":
			return func(context.Context, any, map[string]any) (any, error) {
				return introspection.WrapSchema(e.schema), nil
			}, nil
		case "__type":
			return func(_ context.Context, _ any, args map[string]any) (any, error) {
				name, _ := args["name"].(string)
				return introspection.WrapTypeFromDef(e.schema, e.schema.Types[name]), nil
			}, nil
		}
	}

	if strings.HasPrefix(typeName, "__") {
		return introspect(fieldName), nil
	}

	if f, ok := e.fields[typeName][fieldName]; ok {
		return f, nil
	}
	return nil, goerr.New("field has no resolver", goerr.V("type", typeName), goerr.V("field", fieldName))
}

// value renders v as typ. Typed nil slices render as empty lists.
func (e *executableSchema) value(ctx context.Context, typ *ast.Type, v any, sel ast.SelectionSet) (graphql.Marshaler, bool) {
	if isNull(v) {
		if typ.NonNull {
			if !graphql.HasFieldError(ctx, graphql.GetFieldContext(ctx)) {
				graphql.AddError(ctx, gqlerror.Errorf("must not be null"))
			}
			return graphql.Null, false
		}
		return graphql.Null, true
	}

	if typ.Elem != nil {
		return e.list(ctx, typ, v, sel)
	}

	def := e.schema.Types[typ.NamedType]
	if def == nil {
		graphql.AddError(ctx, goerr.New("unknown type", goerr.V("type", typ.NamedType)))
		return graphql.Null, !typ.NonNull
	}

	switch def.Kind {
	case ast.Object:
		m, ok := e.object(ctx, def.Name, pointerTo(v), sel, false)
		if !ok {
			return graphql.Null, !typ.NonNull
		}
		return m, true

	case ast.Enum:
		return graphql.MarshalString(text(v)), true

	case ast.Scalar:
		m, err := marshalScalar(def.Name, v)
		if err != nil {
			graphql.AddError(ctx, err)
			return graphql.Null, !typ.NonNull
		}
		return m, true

	default:
		graphql.AddError(ctx, goerr.New("unsupported output type", goerr.V("type", def.Name), goerr.V("kind", def.Kind)))
		return graphql.Null, !typ.NonNull
	}
}

func (e *executableSchema) list(ctx context.Context, typ *ast.Type, v any, sel ast.SelectionSet) (graphql.Marshaler, bool) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		graphql.AddError(ctx, goerr.New("list field resolved to a non-list value", goerr.V("type", fmt.Sprintf("%T", v))))
		return graphql.Null, !typ.NonNull
	}

	out := make(graphql.Array, rv.Len())
	for i := range out {
		item := rv.Index(i).Interface()
		itemCtx := graphql.WithFieldContext(ctx, &graphql.FieldContext{Index: &i, Result: item})
		m, ok := e.value(itemCtx, typ.Elem, item, sel)
		if !ok {
			return graphql.Null, !typ.NonNull
		}
		out[i] = m
	}
	return out, true
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// pointerTo returns a pointer to a copy of a struct value so that objects
// always reach their resolvers by pointer
func pointerTo(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Struct {
		return v
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p.Interface()
}

// introspect resolves a field of the introspection types by calling the
// exported method or reading the exported field of the same name
func introspect(fieldName string) fieldFunc {
	name := strings.ToUpper(fieldName[:1]) + fieldName[1:]
	return func(_ context.Context, obj any, args map[string]any) (any, error) {
		rv := reflect.ValueOf(obj)
		if method := rv.MethodByName(name); method.IsValid() {
			in := make([]reflect.Value, method.Type().NumIn())
			for i := range in {
				// includeDeprecated is the only argument of introspection fields
				include, _ := args["includeDeprecated"].(bool)
				in[i] = reflect.ValueOf(include)
			}
			return method.Call(in)[0].Interface(), nil
		}

		if elem := reflect.Indirect(rv); elem.Kind() == reflect.Struct {
			if f := elem.FieldByName(name); f.IsValid() && f.CanInterface() {
				return f.Interface(), nil
			}
		}
		return nil, goerr.New("unknown introspection field", goerr.V("field", fieldName), goerr.V("type", fmt.Sprintf("%T", obj)))
	}
}
