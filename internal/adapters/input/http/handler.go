package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"creatorlink-shell/internal/domain"
	"creatorlink-shell/internal/ports/input"
	dbdriver "creatorlink-shell/pkg/database_driver/gorm"
	"creatorlink-shell/pkg/validator"

	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	logoutTimeout = 10 * time.Second
	pingTimeout   = 2 * time.Second
)

var kindTag = func() string {
	kinds := make([]string, 0, len(domain.EventKinds))
	for _, k := range domain.EventKinds {
		kinds = append(kinds, string(k))
	}
	return "oneof=" + strings.Join(kinds, " ")
}()

// HTTPHandler struct - Primary/Driving adapter for HTTP
type HTTPHandler struct {
	session     input.SessionService
	gate        input.RouteGate
	diagnostics input.DiagnosticsService
	db          *gorm.DB
	validator   validator.Validator
}

// New func - Creates new HTTP handler. db may be nil when the journal is
// kept in memory.
func New(session input.SessionService, gate input.RouteGate, diagnostics input.DiagnosticsService, db *gorm.DB) *HTTPHandler {
	return &HTTPHandler{
		session:     session,
		gate:        gate,
		diagnostics: diagnostics,
		db:          db,
		validator:   validator.New(),
	}
}

// HealthCheck func
func (hdl *HTTPHandler) HealthCheck(c *fiber.Ctx) error {
	if hdl.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
		defer cancel()
		if err := dbdriver.Ping(ctx, hdl.db); err != nil {
			logrus.Errorln(err)
			return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
		}
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: ""})
}

// GetSession godoc
// @Summary Session state
// @Description Current resolution state and the screen set the gate selects
// @Tags SESSION
// @Success 200 {object} map[string]interface{}
// @Router /v1/api/session	[get]
// @Produce json
func (hdl *HTTPHandler) GetSession(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(ResponseBody{
		Status: Success,
		Data:   newSessionResponse(hdl.session.State(), hdl.gate.View()),
	})
}

// RefreshSession godoc
// @Summary Refresh session
// @Description Drop the cached session and resolve it again
// @Tags SESSION
// @Success 202 {object} map[string]interface{}
// @Router /v1/api/session/refresh	[post]
// @Produce json
func (hdl *HTTPHandler) RefreshSession(c *fiber.Ctx) error {
	hdl.session.Refresh(context.Background())
	return c.Status(fiber.StatusAccepted).JSON(ResponseBody{
		Status: Accepted,
		Data:   newSessionResponse(hdl.session.State(), hdl.gate.View()),
	})
}

// Logout godoc
// @Summary Logout
// @Description End the session and go back to the landing page
// @Tags SESSION
// @Success 302
// @Failure 502 {object} map[string]interface{}
// @Router /logout	[post]
func (hdl *HTTPHandler) Logout(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), logoutTimeout)
	defer cancel()

	if err := hdl.session.Logout(ctx); err != nil {
		logrus.Errorln(err)
		msg := ResponseBody{
			Status: BadGateway,
		}
		if !errors.Is(err, domain.ErrLogoutFailed) {
			msg.Status = InternalServerError
		}
		msg.Status.Message = []string{
			err.Error(),
		}
		return c.Status(msg.Status.Code).JSON(msg)
	}
	return c.Redirect("/", fiber.StatusFound)
}

// Home godoc
// @Summary Landing
// @Description Renders whichever screen set is reachable right now
// @Tags GATE
// @Success 200 {object} map[string]interface{}
// @Router /	[get]
// @Produce json
func (hdl *HTTPHandler) Home(c *fiber.Ctx) error {
	view := hdl.gate.View()
	status := Success
	if view == domain.ViewLoading {
		status = Loading
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(status.Code).JSON(ResponseBody{
		Status: status,
		Data:   newSessionResponse(hdl.session.State(), view),
	})
}

// RequireAuthenticated is the gate middleware for signed-in screens.
// While loading it answers 503; for the public experience it sends the
// user back to the landing page.
func (hdl *HTTPHandler) RequireAuthenticated(c *fiber.Ctx) error {
	switch hdl.gate.View() {
	case domain.ViewAuthenticated:
		return c.Next()
	case domain.ViewLoading:
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(ResponseBody{Status: Loading})
	default:
		return c.Redirect("/", fiber.StatusFound)
	}
}

// App godoc
// @Summary Signed-in application
// @Description Only reachable when the session is authenticated
// @Tags GATE
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /app	[get]
// @Produce json
func (hdl *HTTPHandler) App(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(ResponseBody{
		Status: Success,
		Data:   newSessionResponse(hdl.session.State(), domain.ViewAuthenticated),
	})
}

// ListDiagnostics godoc
// @Summary Session diagnostics
// @Description Journal of fetch outcomes, timeouts and logouts
// @Tags DIAGNOSTICS
// @Success 200 {object} map[string]interface{}
// @Router /v1/api/diagnostics	[get]
// @Produce json
// @param kind query string false "event kind"
// @param page query int false "page"
// @param limit query int false "limit"
// @param order_by query string false "occurred_at or kind"
// @param asc query bool false "asc"
func (hdl *HTTPHandler) ListDiagnostics(c *fiber.Ctx) error {
	condition := QueryEventRequest{}
	if err := c.QueryParser(&condition); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(condition); err != nil {
		logrus.Errorln(err)
		msg := ResponseBody{
			Status: BadRequest,
		}
		msg.Status.Message = []string{
			err.Error(),
		}
		return c.Status(fiber.StatusBadRequest).JSON(msg)
	}

	// Convert HTTP query request to domain query request
	domainCondition := domain.QueryEventRequest{
		Limit:   condition.Limit,
		Page:    condition.Page,
		OrderBy: condition.OrderBy,
		Asc:     condition.Asc,
	}
	if condition.Kind != nil {
		if err := hdl.validator.ValidateVar(*condition.Kind, kindTag); err != nil {
			logrus.Errorln(err)
			return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
		}
		kind := domain.EventKind(*condition.Kind)
		domainCondition.Kind = &kind
	}
	result, err := hdl.diagnostics.ListEvents(domainCondition)
	if err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
	}

	// Convert domain response to HTTP response
	data := make([]EventResponse, 0, len(result.Events))
	for _, e := range result.Events {
		data = append(data, EventResponse{
			ID:         e.ID,
			Kind:       string(e.Kind),
			Detail:     e.Detail,
			StatusCode: e.StatusCode,
			OccurredAt: e.OccurredAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(ResponseBody{
		Status:      Success,
		Data:        data,
		CurrentPage: result.CurrentPage,
		PerPage:     result.PerPage,
		TotalItem:   result.TotalItem,
	})
}
