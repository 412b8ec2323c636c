package handler

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/purplesanya/tg-bot/frontend/internal/attachments"
	"github.com/purplesanya/tg-bot/frontend/internal/authflow"
	frontend_domain "github.com/purplesanya/tg-bot/frontend/internal/domain"
	"github.com/purplesanya/tg-bot/frontend/internal/middleware"
	"github.com/purplesanya/tg-bot/frontend/internal/view"
	"github.com/purplesanya/tg-bot/shared/domain"
	"github.com/purplesanya/tg-bot/shared/logger"
)

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common *frontend_domain.CommonTemplateData
}

// renderer formats display fragments in the stored language.
func (h *Handler) renderer() *view.Renderer {
	return view.New(h.Accounts.Preferences().Language, h.Public.APIBaseURL)
}

// initCommonTemplateData pops pending flashes and fills the fields every
// page shares.
func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request, rv *view.Renderer, tab string) *frontend_domain.CommonTemplateData {
	common := &frontend_domain.CommonTemplateData{
		Error:     h.popFlash(w, r, flashCookieError),
		Success:   h.popFlash(w, r, flashCookieSuccess),
		Info:      h.popFlash(w, r, flashCookieInfo),
		CSRFToken: middleware.GetCSRFTokenFromContext(r),
		Text:      rv.Catalog,
		Tab:       tab,
		Validation: frontend_domain.ValidationData{
			NameMaxLen:       100,
			MessageMaxLen:    4096,
			MaxAttachments:   attachments.MaxItems,
			MaxUploadSizeMB:  MaxFileSize >> 20,
			IntervalUnits:    domain.IntervalUnits,
			AllowedLanguages: authflow.Languages(),
		},
	}

	st := h.Auth.Status()
	if st.State == authflow.Authenticated && st.User != nil {
		common.User = st.User
		common.IsAdmin = st.User.IsAdmin
		common.Accounts = rv.AccountMenu(h.Accounts.Snapshot())
	}
	return common
}

// autoRefresh makes the page re-read the latest snapshot every poll period.
func (h *Handler) autoRefresh(common *frontend_domain.CommonTemplateData, url string) {
	common.RefreshSeconds = seconds(h.Sync.Interval())
	common.RefreshURL = url
}

func seconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}

func (h *Handler) renderTemplate(w http.ResponseWriter, name string, common *frontend_domain.CommonTemplateData, data any) {
	tmpl, ok := h.Templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, TemplateData{Data: data, Common: common}); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// Interstitial keeps the current notice on screen for delay, then moves on
// to target.
func (h *Handler) Interstitial(w http.ResponseWriter, r *http.Request, target string, delay time.Duration) {
	common := h.initCommonTemplateData(w, r, h.renderer(), "")
	common.RefreshSeconds = seconds(delay)
	common.RefreshURL = target
	h.renderTemplate(w, "redirect.html", common, frontend_domain.RedirectPageData{
		Target:  target,
		Seconds: common.RefreshSeconds,
		Delay:   delay,
	})
}
