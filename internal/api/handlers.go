package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/freshxpress/dashboard/internal/apiclient"
	"github.com/freshxpress/dashboard/internal/auth"
	"github.com/freshxpress/dashboard/internal/dashboard"
	"github.com/freshxpress/dashboard/internal/models"
	"github.com/freshxpress/dashboard/internal/utils"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	loginFailed  = "Login failed"
	loginError   = "An error occurred"
	dashboardURL = "/dashboard"
)

// Handler serves the dashboard pages. Each request gets its own view of the
// session; the backend client is bound to that session's token store.
type Handler struct {
	client   *apiclient.Client
	sessions *auth.Manager
	views    *Views
	mapCfg   utils.MapConfig
	logger   *zap.Logger
}

// NewHandler parses the embedded templates.
func NewHandler(client *apiclient.Client, sessions *auth.Manager, mapCfg utils.MapConfig, logger *zap.Logger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	views, err := loadViews()
	if err != nil {
		return nil, err
	}
	return &Handler{
		client:   client,
		sessions: sessions,
		views:    views,
		mapCfg:   mapCfg,
		logger:   logger,
	}, nil
}

type loginPage struct {
	Email string
	Error string
}

type listRow struct {
	ID       string
	ShortID  string
	Name     string
	Contact  string
	State    string
	Verified bool
}

type listPage struct {
	Rows        []listRow
	Page        dashboard.Page
	Sort        string
	ToggleSort  string
	ToggleLabel string
	LoadFailed  bool
}

type detailPage struct {
	ID          string
	View        dashboard.DetailView
	Verified    bool
	Status      string
	ActionLabel string
	Prompt      string
	Confirming  bool
	Notice      string

	MapTiles       string
	MapAttribution string
	MapZoom        int
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "OK")
}

// LoginPage shows the sign-in form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", loginPage{})
}

// Login exchanges credentials for a token and stores it in the session
// cookie. On failure the form is shown again with the backend's message.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "login", loginPage{Error: loginFailed})
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	token, err := h.client.Login(r.Context(), email, password)
	if err != nil {
		msg, status := loginFailure(err)
		h.log(r).Info("login rejected", zap.Int("status", status), zap.Error(err))
		h.render(w, r, status, "login", loginPage{Email: email, Error: msg})
		return
	}

	if err := h.sessions.Tokens(w, r).SetToken(token); err != nil {
		h.log(r).Error("store session token", zap.Error(err))
		h.render(w, r, http.StatusInternalServerError, "login", loginPage{Email: email, Error: loginError})
		return
	}
	h.log(r).Debug("login", zap.String("email", email))
	http.Redirect(w, r, dashboardURL, http.StatusSeeOther)
}

func loginFailure(err error) (string, int) {
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		msg := se.Message
		if msg == "" {
			msg = loginFailed
		}
		if se.Code >= 400 && se.Code < 500 {
			return msg, http.StatusUnauthorized
		}
		return msg, http.StatusBadGateway
	}
	return loginError, http.StatusBadGateway
}

// Logout clears the session; the session's logout hook sends the browser
// back to the login page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}
	if err := sess.Logout(); err != nil {
		h.log(r).Warn("logout", zap.Error(err))
	}
}

// List shows one page of farmers in the requested order.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	client, ok := h.clientFor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	verifiedFirst := dashboard.ParseSort(q.Get("sort"))
	page, _ := strconv.Atoi(q.Get("page"))

	data := listPage{
		Sort:        dashboard.SortParam(verifiedFirst),
		ToggleSort:  dashboard.SortParam(!verifiedFirst),
		ToggleLabel: dashboard.SortToggleLabel(verifiedFirst),
	}

	farmers, err := client.ListFarmers(r.Context())
	if err != nil {
		if h.redirectOnAuthError(w, r, err) {
			return
		}
		h.log(r).Error("list farmers", zap.Error(err))
		data.LoadFailed = true
		farmers = nil
	}

	data.Page = dashboard.Paginate(dashboard.SortByVerification(farmers, verifiedFirst), page)
	data.Rows = make([]listRow, 0, len(data.Page.Items))
	for _, f := range data.Page.Items {
		data.Rows = append(data.Rows, toRow(f))
	}
	h.render(w, r, http.StatusOK, "list", data)
}

func toRow(f models.FarmerSummary) listRow {
	return listRow{
		ID:       f.ID,
		ShortID:  dashboard.ShortID(f.ID),
		Name:     f.FullName,
		Contact:  f.ContactNumber.String(),
		State:    f.State.String(),
		Verified: f.IsVerify,
	}
}

// Detail shows one farmer. With ?confirm=1 the verification prompt is open.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	client, ok := h.clientFor(w, r)
	if !ok {
		return
	}
	id, ok := farmerID(r)
	if !ok {
		h.render(w, r, http.StatusNotFound, "notfound", nil)
		return
	}

	var detail dashboard.Detail
	ticket := detail.Begin(id)
	farmer, err := client.GetFarmer(r.Context(), id)
	if err != nil {
		if h.redirectOnAuthError(w, r, err) {
			return
		}
		h.log(r).Error("get farmer", zap.String("farmer_id", id), zap.Error(err))
	}
	detail.Resolve(ticket, farmer, err)

	if detail.State() != dashboard.StateLoaded {
		h.render(w, r, http.StatusNotFound, "notfound", nil)
		return
	}

	farmer = detail.Farmer()
	flow := dashboard.NewVerificationFlow(farmer.IsVerify)
	confirming := r.URL.Query().Get("confirm") == "1"
	if confirming {
		// A fresh flow is always idle.
		_ = flow.Request()
	}

	h.render(w, r, http.StatusOK, "detail", detailPage{
		ID:             id,
		View:           dashboard.Present(farmer),
		Verified:       flow.Verified(),
		Status:         flow.StatusLabel(),
		ActionLabel:    flow.ActionLabel(),
		Prompt:         flow.Prompt(),
		Confirming:     confirming,
		Notice:         r.URL.Query().Get("status"),
		MapTiles:       h.mapCfg.TileURL,
		MapAttribution: h.mapCfg.Attribution,
		MapZoom:        h.mapCfg.Zoom,
	})
}

// Verify applies a confirmed verification change. The form carries the
// status the user saw, and the new status is always its negation.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	client, ok := h.clientFor(w, r)
	if !ok {
		return
	}
	id, ok := farmerID(r)
	if !ok {
		http.Error(w, "bad farmer id", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	current, err := strconv.ParseBool(r.PostFormValue("current"))
	if err != nil {
		http.Error(w, "missing current verification status", http.StatusBadRequest)
		return
	}

	flow := dashboard.NewVerificationFlow(current)
	_ = flow.Request()
	err = flow.Confirm(r.Context(), func(ctx context.Context, verified bool) error {
		return client.SetVerification(ctx, id, verified)
	})
	back := "/farmers/" + url.PathEscape(id)
	if err != nil {
		if h.redirectOnAuthError(w, r, err) {
			return
		}
		h.log(r).Error("update verification", zap.String("farmer_id", id), zap.Error(err))
		http.Redirect(w, r, back+"?status=failed", http.StatusSeeOther)
		return
	}
	h.log(r).Info("verification updated", zap.String("farmer_id", id), zap.Bool("verified", flow.Verified()))
	http.Redirect(w, r, back+"?status=updated", http.StatusSeeOther)
}

// farmerID returns the decoded {id} segment. The router matches on the
// escaped path so identifiers containing "/" or "?" survive the round trip.
func farmerID(r *http.Request) (string, bool) {
	id, err := url.PathUnescape(mux.Vars(r)["id"])
	return id, err == nil && id != ""
}

// clientFor binds the backend client to the session placed by the gate.
func (h *Handler) clientFor(w http.ResponseWriter, r *http.Request) (*apiclient.Client, bool) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, auth.LoginPath, http.StatusFound)
		return nil, false
	}
	return h.client.WithTokens(sess.Store()), true
}

// redirectOnAuthError sends the browser to the login page when err means the
// session is gone. It reports whether it responded.
func (h *Handler) redirectOnAuthError(w http.ResponseWriter, r *http.Request, err error) bool {
	outcome := apiclient.Classify(err)
	if !outcome.NeedsLogin() {
		return false
	}
	h.log(r).Info("session ended", zap.Stringer("outcome", outcome))
	http.Redirect(w, r, auth.LoginPath, http.StatusFound)
	return true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := h.views.render(w, status, name, data); err != nil {
		h.log(r).Error("render", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) log(r *http.Request) *zap.Logger {
	return h.logger.With(zap.String("request_id", apiclient.RequestIDFrom(r.Context())))
}
