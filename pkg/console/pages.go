package console

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/nna-wms/wmsconsole/pkg/crud"
	"github.com/nna-wms/wmsconsole/pkg/httputil"
	"github.com/nna-wms/wmsconsole/pkg/wms"
)

// Form modes.
const (
	FormCreate = "create"
	FormUpdate = "update"
)

const maxPayloadBytes = 1 << 20

var (
	errMissingID      = errors.New("id is required")
	errInvalidID      = errors.New("id must be a positive integer")
	errEmptyPayload   = errors.New("payload is required")
	errInvalidPayload = errors.New("invalid payload")
)

// actionResponse is the JSON answer to every page action.
type actionResponse[TData any] struct {
	crud.Result
	State crud.State[TData] `json:"state"`
}

// submission is a decoded page request: the effective method, the target id
// and the raw payload.
type submission struct {
	method  string
	id      int64
	hasID   bool
	payload []byte
	json    bool
}

// readSubmission reads the method override, id and payload from either a JSON
// body or a urlencoded form. Forms can only POST, so they name PUT and DELETE
// in a _method field.
func readSubmission(r *http.Request) (submission, error) {
	sub := submission{method: r.Method, json: isJSONBody(r)}

	var rawID string
	if sub.json {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
		if err != nil {
			return sub, fmt.Errorf("read body: %w", err)
		}
		sub.payload = data
		rawID = r.URL.Query().Get("id")
		if m := r.URL.Query().Get("_method"); r.Method == http.MethodPost && m != "" {
			sub.method = strings.ToUpper(m)
		}
	} else {
		r.Body = http.MaxBytesReader(nil, r.Body, maxPayloadBytes)
		if err := r.ParseForm(); err != nil {
			return sub, fmt.Errorf("parse form: %w", err)
		}
		sub.payload = []byte(r.PostForm.Get("payload"))
		rawID = r.Form.Get("id")
		if m := r.PostForm.Get("_method"); r.Method == http.MethodPost && m != "" {
			sub.method = strings.ToUpper(m)
		}
	}

	if rawID != "" {
		id, err := parseID(rawID)
		if err != nil {
			return sub, err
		}
		sub.id, sub.hasID = id, true
	}
	return sub, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func isJSONBody(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// decodePayload strictly decodes a JSON payload into T.
func decodePayload[T any](data []byte) (T, error) {
	var v T
	if len(bytes.TrimSpace(data)) == 0 {
		return v, errEmptyPayload
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %w", errInvalidPayload, err)
	}
	return v, nil
}

// pretty renders v as indented JSON for forms and detail views.
func pretty(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// page holds what every entity page needs to reach its store.
type page[TData, TCreate, TUpdate any] struct {
	entity wms.Entity
	pick   func(*Stores) *crud.Store[TData, TCreate, TUpdate]
	views  *views
	log    *slog.Logger
}

func (p *page[TData, TCreate, TUpdate]) store(w http.ResponseWriter, r *http.Request) (*crud.Store[TData, TCreate, TUpdate], bool) {
	ws, ok := WorkspaceFrom(r.Context())
	if !ok {
		p.log.Error("request reached a page without a workspace", "path", r.URL.Path)
		p.views.writeError(w, r, http.StatusInternalServerError, "no_workspace", "Session workspace is not available")
		return nil, false
	}
	return p.pick(ws.Stores), true
}

func (p *page[TData, TCreate, TUpdate]) writeJSON(w http.ResponseWriter, status int, res crud.Result, store *crud.Store[TData, TCreate, TUpdate]) {
	if !res.Success && status < http.StatusBadRequest {
		status = http.StatusBadGateway
	}
	httputil.WriteJSON(w, status, actionResponse[TData]{Result: res, State: store.Snapshot()})
}

// resultOf turns the store's error field into a Result, for actions that
// report nothing themselves.
func resultOf[TData, TCreate, TUpdate any](store *crud.Store[TData, TCreate, TUpdate]) crud.Result {
	if msg := store.Error(); msg != "" {
		return crud.Result{Success: false, Message: msg}
	}
	return crud.Result{Success: true}
}

func (p *page[TData, TCreate, TUpdate]) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	code := "invalid_request"
	switch {
	case errors.Is(err, errMissingID):
		code = "missing_id"
	case errors.Is(err, errInvalidID):
		code = "invalid_id"
	case errors.Is(err, errEmptyPayload), errors.Is(err, errInvalidPayload):
		code = "invalid_payload"
	}
	p.views.writeError(w, r, http.StatusBadRequest, code, err.Error())
}

// EntityPage serves the table page of one entity and its JSON actions.
type EntityPage[TData, TCreate, TUpdate any] struct {
	page[TData, TCreate, TUpdate]

	// CreatePath and UpdatePath are the absolute paths of the form pages,
	// when the entity has them.
	CreatePath string
	UpdatePath string
}

// NewEntityPage creates the page of entity, reading its store from the
// request's workspace through pick.
func NewEntityPage[TData, TCreate, TUpdate any](entity wms.Entity, pick func(*Stores) *crud.Store[TData, TCreate, TUpdate], v *views, log *slog.Logger) *EntityPage[TData, TCreate, TUpdate] {
	return &EntityPage[TData, TCreate, TUpdate]{
		page: page[TData, TCreate, TUpdate]{entity: entity, pick: pick, views: v, log: log},
	}
}

// PageName implements menu.Named.
func (p *EntityPage[TData, TCreate, TUpdate]) PageName() string {
	return "entity:" + p.entity.Name
}

// ServeHTTP implements http.Handler.
func (p *EntityPage[TData, TCreate, TUpdate]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	store, ok := p.store(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		p.get(w, r, store)
		return
	}

	sub, err := readSubmission(r)
	if err != nil {
		p.badRequest(w, r, err)
		return
	}
	asJSON := sub.json || wantsJSON(r)

	var (
		res    crud.Result
		status = http.StatusOK
	)
	switch sub.method {
	case http.MethodPost:
		payload, err := decodePayload[TCreate](sub.payload)
		if err != nil {
			p.badRequest(w, r, err)
			return
		}
		res = store.CreateData(r.Context(), payload)
		status = http.StatusCreated
	case http.MethodPut:
		if !sub.hasID {
			p.badRequest(w, r, errMissingID)
			return
		}
		payload, err := decodePayload[TUpdate](sub.payload)
		if err != nil {
			p.badRequest(w, r, err)
			return
		}
		res = store.UpdateData(r.Context(), sub.id, payload)
	case http.MethodDelete:
		if !sub.hasID {
			p.badRequest(w, r, errMissingID)
			return
		}
		store.DeleteData(r.Context(), sub.id)
		res = resultOf(store)
	default:
		w.Header().Set("Allow", "GET, POST, PUT, DELETE")
		p.views.writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	if asJSON {
		p.writeJSON(w, status, res, store)
		return
	}
	if res.Success {
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return
	}
	p.table(w, r, http.StatusBadGateway, store, res.Message)
}

func (p *EntityPage[TData, TCreate, TUpdate]) get(w http.ResponseWriter, r *http.Request, store *crud.Store[TData, TCreate, TUpdate]) {
	var res crud.Result
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			p.badRequest(w, r, err)
			return
		}
		store.FetchByID(r.Context(), id)
		res = resultOf(store)
	} else {
		res = store.FetchAll(r.Context())
	}

	if wantsJSON(r) {
		p.writeJSON(w, http.StatusOK, res, store)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	p.table(w, r, status, store, res.Message)
}

func (p *EntityPage[TData, TCreate, TUpdate]) table(w http.ResponseWriter, r *http.Request, status int, store *crud.Store[TData, TCreate, TUpdate], errMsg string) {
	snap := store.Snapshot()
	rows, err := rowsOf(snap.List)
	if err != nil {
		p.log.Error("convert rows", "entity", p.entity.Name, "error", err)
	}
	data := tableData{
		Columns:    columnsOf(p.entity),
		Rows:       rows,
		Error:      errMsg,
		BasePath:   r.URL.Path,
		CreatePath: p.CreatePath,
		UpdatePath: p.UpdatePath,
	}
	if r.URL.Query().Has("id") && snap.Detail != nil {
		data.Detail = pretty(snap.Detail)
	}
	p.views.render(w, r, status, "table", p.entity.Title(), data)
}

// FormPage serves the create or update form of one entity.
type FormPage[TData, TCreate, TUpdate any] struct {
	page[TData, TCreate, TUpdate]

	mode string
	// Back is the entity page the form returns to.
	Back string
}

// NewFormPage creates a form page. mode is FormCreate or FormUpdate.
func NewFormPage[TData, TCreate, TUpdate any](entity wms.Entity, mode string, pick func(*Stores) *crud.Store[TData, TCreate, TUpdate], v *views, log *slog.Logger) *FormPage[TData, TCreate, TUpdate] {
	return &FormPage[TData, TCreate, TUpdate]{
		page: page[TData, TCreate, TUpdate]{entity: entity, pick: pick, views: v, log: log},
		mode: mode,
		Back: entity.Page,
	}
}

// PageName implements menu.Named.
func (p *FormPage[TData, TCreate, TUpdate]) PageName() string {
	return "form:" + p.entity.Name + ":" + p.mode
}

// ServeHTTP implements http.Handler.
func (p *FormPage[TData, TCreate, TUpdate]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	store, ok := p.store(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		p.show(w, r, store)
	case http.MethodPost, http.MethodPut:
		p.submit(w, r, store)
	default:
		w.Header().Set("Allow", "GET, POST, PUT")
		p.views.writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	}
}

func (p *FormPage[TData, TCreate, TUpdate]) title() string {
	return wms.Title(p.mode + " " + p.entity.Name)
}

func (p *FormPage[TData, TCreate, TUpdate]) form(w http.ResponseWriter, r *http.Request, status int, data formData) {
	data.Action = r.URL.Path
	data.Back = p.Back
	if p.mode == FormUpdate {
		data.Method = http.MethodPut
	}
	p.views.render(w, r, status, "form", p.title(), data)
}

// show renders an empty create form, or an update form prefilled from the
// entity's detail.
func (p *FormPage[TData, TCreate, TUpdate]) show(w http.ResponseWriter, r *http.Request, store *crud.Store[TData, TCreate, TUpdate]) {
	if p.mode == FormCreate {
		var zero TCreate
		p.form(w, r, http.StatusOK, formData{Payload: pretty(zero)})
		return
	}

	raw := r.URL.Query().Get("id")
	if raw == "" {
		p.badRequest(w, r, errMissingID)
		return
	}
	id, err := parseID(raw)
	if err != nil {
		p.badRequest(w, r, err)
		return
	}

	store.FetchByID(r.Context(), id)
	if res := resultOf(store); !res.Success {
		p.form(w, r, http.StatusBadGateway, formData{ID: id, Error: res.Message})
		return
	}
	payload, err := convert[TUpdate](store.Detail())
	if err != nil {
		p.log.Warn("prefill update form", "entity", p.entity.Name, "error", err)
	}
	p.form(w, r, http.StatusOK, formData{ID: id, Payload: pretty(payload)})
}

func (p *FormPage[TData, TCreate, TUpdate]) submit(w http.ResponseWriter, r *http.Request, store *crud.Store[TData, TCreate, TUpdate]) {
	sub, err := readSubmission(r)
	if err != nil {
		p.badRequest(w, r, err)
		return
	}
	asJSON := sub.json || wantsJSON(r)

	fail := func(status int, msg string) {
		if asJSON {
			p.writeJSON(w, status, crud.Result{Success: false, Message: msg}, store)
			return
		}
		p.form(w, r, status, formData{ID: sub.id, Payload: string(sub.payload), Error: msg})
	}

	var res crud.Result
	switch p.mode {
	case FormCreate:
		payload, err := decodePayload[TCreate](sub.payload)
		if err != nil {
			fail(http.StatusBadRequest, err.Error())
			return
		}
		res = store.CreateData(r.Context(), payload)
	default:
		if !sub.hasID {
			fail(http.StatusBadRequest, errMissingID.Error())
			return
		}
		payload, err := decodePayload[TUpdate](sub.payload)
		if err != nil {
			fail(http.StatusBadRequest, err.Error())
			return
		}
		res = store.UpdateData(r.Context(), sub.id, payload)
	}

	if !res.Success {
		fail(http.StatusBadGateway, res.Message)
		return
	}
	if asJSON {
		p.writeJSON(w, http.StatusOK, res, store)
		return
	}
	http.Redirect(w, r, p.Back, http.StatusSeeOther)
}

// convert maps v onto T through its JSON form. Used to turn an entity into
// its update payload.
func convert[T any](v any) (T, error) {
	var out T
	if v == nil {
		return out, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}
