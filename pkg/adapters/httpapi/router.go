package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/logger"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
)

// PrincipalHeader lleva la cuenta autenticada que hace la petición. La
// autenticación ocurre antes de este servicio.
const PrincipalHeader = "X-Principal-ID"

// RequestObserver registra latencia y estado por ruta.
type RequestObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

type Options struct {
	Approval  ports.ApprovalService
	Employees ports.EmployeeService
	Groups    ports.GroupService
	Observer  RequestObserver
	Metrics   http.Handler
	Log       *logger.Logger
}

type server struct {
	approval  ports.ApprovalService
	employees ports.EmployeeService
	groups    ports.GroupService
	log       *logger.Logger
}

// NewRouter arma el router chi con todas las rutas del API.
func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	s := &server{
		approval:  opts.Approval,
		employees: opts.Employees,
		groups:    opts.Groups,
		log:       log.With("component", "http"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if opts.Observer != nil {
		r.Use(observe(opts.Observer))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/documents", func(api chi.Router) {
		api.Post("/", s.createDocument)
		api.Route("/{id}", func(doc chi.Router) {
			doc.Get("/", s.getDocument)
			doc.Delete("/", s.deleteDocument)
			doc.Put("/signers", s.assignRoster)
			doc.Post("/signers", s.addSigner)
			doc.Post("/signers/reorder", s.reorder)
			doc.Route("/signers/{position}", func(slot chi.Router) {
				slot.Delete("/", s.removeSigner)
				slot.Get("/actionable", s.canAct)
				slot.Post("/sign", s.sign)
				slot.Post("/reject", s.reject)
				slot.Post("/retentions", s.recordRetention)
			})
		})
	})

	if s.employees != nil {
		r.Route("/employees", func(api chi.Router) {
			api.Get("/", s.listEmployees)
			api.Post("/", s.createEmployee)
			api.Get("/{id}", s.getEmployee)
			api.Put("/{id}", s.updateEmployee)
			api.Delete("/{id}", s.deleteEmployee)
		})
	}
	if s.groups != nil {
		r.Route("/groups", func(api chi.Router) {
			api.Get("/", s.listGroups)
			api.Post("/", s.createGroup)
			api.Get("/{code}", s.getGroup)
			api.Put("/{code}", s.updateGroup)
			api.Put("/{code}/members", s.setMembers)
			api.Delete("/{code}", s.deleteGroup)
		})
	}
	return r
}

func observe(obs RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			obs.ObserveHTTP(r.Method, route, status, time.Since(start))
		})
	}
}

func principal(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(PrincipalHeader))
	if id == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", PrincipalHeader+" header is required")
		return "", false
	}
	return id, true
}

func positionParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	pos, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_POSITION", "position must be an integer")
		return 0, false
	}
	return pos, true
}
