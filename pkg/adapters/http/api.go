package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// DecodePayloadParams defines parameters for DecodePayload.
type DecodePayloadParams struct {
	// Unknown selects the policy for undeclared keys: drop, reject or preserve.
	Unknown *string `form:"unknown,omitempty" json:"unknown,omitempty"`

	// MaxDepth caps nesting for this request.
	MaxDepth *int `form:"max_depth,omitempty" json:"max_depth,omitempty"`
}

// SubscribeEventsParams defines parameters for SubscribeEvents.
type SubscribeEventsParams struct {
	// Record limits the stream to changes of one record.
	Record *string `form:"record,omitempty" json:"record,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /info)
	GetInfo(w http.ResponseWriter, r *http.Request)
	// (GET /openapi.json)
	GetOpenAPI(w http.ResponseWriter, r *http.Request)
	// (GET /events)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams)
	// (GET /records)
	ListRecords(w http.ResponseWriter, r *http.Request)
	// (POST /records)
	RegisterRecord(w http.ResponseWriter, r *http.Request)
	// (GET /records/{name})
	GetRecord(w http.ResponseWriter, r *http.Request, name string)
	// (DELETE /records/{name})
	DeleteRecord(w http.ResponseWriter, r *http.Request, name string)
	// (GET /records/{name}/openapi)
	GetRecordOpenAPI(w http.ResponseWriter, r *http.Request, name string)
	// (POST /records/{name}/decode)
	DecodePayload(w http.ResponseWriter, r *http.Request, name string, params DecodePayloadParams)
}

// ServerInterfaceWrapper converts request parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetHealth(w, r)
}

func (siw *ServerInterfaceWrapper) GetInfo(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetInfo(w, r)
}

func (siw *ServerInterfaceWrapper) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetOpenAPI(w, r)
}

func (siw *ServerInterfaceWrapper) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var params SubscribeEventsParams

	if err := runtime.BindQueryParameter("form", true, false, "record", r.URL.Query(), &params.Record); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "record", Err: err})
		return
	}

	siw.Handler.SubscribeEvents(w, r, params)
}

func (siw *ServerInterfaceWrapper) ListRecords(w http.ResponseWriter, r *http.Request) {
	siw.Handler.ListRecords(w, r)
}

func (siw *ServerInterfaceWrapper) RegisterRecord(w http.ResponseWriter, r *http.Request) {
	siw.Handler.RegisterRecord(w, r)
}

func (siw *ServerInterfaceWrapper) GetRecord(w http.ResponseWriter, r *http.Request) {
	name, ok := siw.bindName(w, r)
	if !ok {
		return
	}
	siw.Handler.GetRecord(w, r, name)
}

func (siw *ServerInterfaceWrapper) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	name, ok := siw.bindName(w, r)
	if !ok {
		return
	}
	siw.Handler.DeleteRecord(w, r, name)
}

func (siw *ServerInterfaceWrapper) GetRecordOpenAPI(w http.ResponseWriter, r *http.Request) {
	name, ok := siw.bindName(w, r)
	if !ok {
		return
	}
	siw.Handler.GetRecordOpenAPI(w, r, name)
}

func (siw *ServerInterfaceWrapper) DecodePayload(w http.ResponseWriter, r *http.Request) {
	name, ok := siw.bindName(w, r)
	if !ok {
		return
	}

	var params DecodePayloadParams

	if err := runtime.BindQueryParameter("form", true, false, "unknown", r.URL.Query(), &params.Unknown); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "unknown", Err: err})
		return
	}

	if err := runtime.BindQueryParameter("form", true, false, "max_depth", r.URL.Query(), &params.MaxDepth); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "max_depth", Err: err})
		return
	}

	siw.Handler.DecodePayload(w, r, name, params)
}

func (siw *ServerInterfaceWrapper) bindName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var name string
	err := runtime.BindStyledParameterWithOptions("simple", "name", chi.URLParam(r, "name"), &name,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "name", Err: err})
		return "", false
	}
	return name, true
}

// HandlerFromMux registers si's routes on r and returns it.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			writeError(w, http.StatusBadRequest, err.Error())
		},
	}

	r.Get("/health", wrapper.GetHealth)
	r.Get("/info", wrapper.GetInfo)
	r.Get("/openapi.json", wrapper.GetOpenAPI)
	r.Get("/events", wrapper.SubscribeEvents)
	r.Get("/records", wrapper.ListRecords)
	r.Post("/records", wrapper.RegisterRecord)
	r.Get("/records/{name}", wrapper.GetRecord)
	r.Delete("/records/{name}", wrapper.DeleteRecord)
	r.Get("/records/{name}/openapi", wrapper.GetRecordOpenAPI)
	r.Post("/records/{name}/decode", wrapper.DecodePayload)

	return r
}
