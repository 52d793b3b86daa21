package http

import (
	"net/http"
	"strings"
	"time"

	"accelerator/internal/domain/user"
	"accelerator/internal/http/handlers"
	httpmw "accelerator/internal/http/middleware"
)

type RouterDependencies struct {
	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	DirectionHandler  *handlers.DirectionHandler
	ProgramHandler    *handlers.ProgramHandler
	StageHandler      *handlers.StageHandler
	ApplicantHandler  *handlers.ApplicantHandler
	ResponseHandler   *handlers.ResponseHandler
	EvaluationHandler *handlers.EvaluationHandler
	MetricsHandler    http.Handler
	AuthMiddleware    *httpmw.AuthMiddleware
	RequestTimeout    time.Duration
}

type Router struct {
	deps    RouterDependencies
	handler http.Handler
}

const maxBodyBytes = 1 << 20

var (
	programStaff = []user.Role{user.RoleStaffAcceleration, user.RoleAdmin}
	evaluators   = []user.Role{user.RoleStaffDirection, user.RoleAdmin}
	staff        = []user.Role{user.RoleStaffAcceleration, user.RoleStaffDirection, user.RoleAdmin}
)

func NewRouter(deps RouterDependencies) http.Handler {
	r := &Router{deps: deps}
	r.handler = httpmw.Chain(r.baseHandler(), httpmw.RequestID, httpmw.Logging, httpmw.BodyLimit(maxBodyBytes), httpmw.Recover, httpmw.Metrics("accelerator"), httpmw.Timeout(deps.RequestTimeout))
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) baseHandler() http.Handler {
	protected := r.deps.AuthMiddleware.Authenticate(http.HandlerFunc(r.handleProtected))
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		switch {
		case req.Method == http.MethodGet && path == "/health":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		case req.Method == http.MethodGet && path == "/metrics":
			if r.deps.MetricsHandler == nil {
				http.NotFound(w, req)
				return
			}
			r.deps.MetricsHandler.ServeHTTP(w, req)
			return
		case req.Method == http.MethodPost && path == "/auth/register":
			r.deps.AuthHandler.Register(w, req)
			return
		case req.Method == http.MethodPost && path == "/auth/login":
			r.deps.AuthHandler.Login(w, req)
			return
		}

		switch resource(path) {
		case "users", "directions", "programs", "join-programs", "stages", "ordered-stages", "applicants", "responses", "evaluations":
			protected.ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})
}

func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	parts := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	method := req.Method

	// parts[0] is the resource; n counts the remaining segments.
	n := len(parts) - 1
	switch parts[0] {
	case "users":
		switch {
		case method == http.MethodGet && n == 1 && parts[1] == "me":
			r.deps.UserHandler.Me(w, req)
			return
		case method == http.MethodPatch && n == 2 && parts[2] == "role":
			withRoles(r.deps.UserHandler.SetRole, user.RoleAdmin).ServeHTTP(w, req)
			return
		}
	case "directions":
		switch {
		case method == http.MethodGet && n == 0:
			r.deps.DirectionHandler.List(w, req)
			return
		case method == http.MethodGet && n == 1:
			r.deps.DirectionHandler.Get(w, req)
			return
		}
	case "programs":
		switch {
		case method == http.MethodGet && n == 0:
			r.deps.ProgramHandler.List(w, req)
			return
		case method == http.MethodPost && n == 0:
			withRoles(r.deps.ProgramHandler.Create, programStaff...).ServeHTTP(w, req)
			return
		case method == http.MethodGet && n == 1:
			r.deps.ProgramHandler.Get(w, req)
			return
		case method == http.MethodPatch && n == 1:
			withRoles(r.deps.ProgramHandler.Update, programStaff...).ServeHTTP(w, req)
			return
		case method == http.MethodDelete && n == 1:
			withRoles(r.deps.ProgramHandler.Delete, programStaff...).ServeHTTP(w, req)
			return
		case method == http.MethodGet && n == 2 && parts[2] == "join-programs":
			r.deps.ProgramHandler.ListJoinPrograms(w, req)
			return
		}
	case "join-programs":
		switch {
		case method == http.MethodGet && n == 0:
			r.deps.ProgramHandler.ListAllJoinPrograms(w, req)
			return
		case method == http.MethodGet && n == 1:
			r.deps.ProgramHandler.GetJoinProgram(w, req)
			return
		case method == http.MethodGet && n == 2 && parts[2] == "stages":
			r.deps.ProgramHandler.ListJoinProgramStages(w, req)
			return
		}
	case "stages":
		switch {
		case method == http.MethodGet && n == 0:
			r.deps.StageHandler.List(w, req)
			return
		case method == http.MethodPost && n == 0:
			withRoles(r.deps.StageHandler.Create, programStaff...).ServeHTTP(w, req)
			return
		case method == http.MethodGet && n == 1:
			r.deps.StageHandler.Get(w, req)
			return
		case method == http.MethodPatch && n == 1:
			withRoles(r.deps.StageHandler.Update, programStaff...).ServeHTTP(w, req)
			return
		case method == http.MethodDelete && n == 1:
			withRoles(r.deps.StageHandler.Delete, programStaff...).ServeHTTP(w, req)
			return
		}
	case "ordered-stages":
		switch {
		case method == http.MethodGet && n == 0:
			r.deps.StageHandler.ListOrdered(w, req)
			return
		case method == http.MethodPost && n == 0:
			withRoles(r.deps.StageHandler.Bind, programStaff...).ServeHTTP(w, req)
			return
		case method == http.MethodGet && n == 1:
			r.deps.StageHandler.GetOrdered(w, req)
			return
		case method == http.MethodDelete && n == 1:
			withRoles(r.deps.StageHandler.Unbind, programStaff...).ServeHTTP(w, req)
			return
		}
	case "applicants":
		switch {
		case method == http.MethodPost && n == 0:
			r.deps.ApplicantHandler.Submit(w, req)
			return
		case method == http.MethodGet && n == 0:
			r.deps.ApplicantHandler.List(w, req)
			return
		case method == http.MethodGet && n == 1:
			r.deps.ApplicantHandler.Get(w, req)
			return
		case method == http.MethodDelete && n == 1:
			r.deps.ApplicantHandler.Withdraw(w, req)
			return
		case method == http.MethodPatch && n == 2 && parts[2] == "status":
			withRoles(r.deps.ApplicantHandler.UpdateStatus, programStaff...).ServeHTTP(w, req)
			return
		}
	case "responses":
		switch {
		case method == http.MethodPost && n == 0:
			r.deps.ResponseHandler.Submit(w, req)
			return
		case method == http.MethodGet && n == 0:
			r.deps.ResponseHandler.List(w, req)
			return
		case method == http.MethodGet && n == 1:
			r.deps.ResponseHandler.Get(w, req)
			return
		}
	case "evaluations":
		switch {
		case method == http.MethodPost && n == 0:
			withRoles(r.deps.EvaluationHandler.Submit, evaluators...).ServeHTTP(w, req)
			return
		case method == http.MethodGet && n == 0:
			withRoles(r.deps.EvaluationHandler.List, staff...).ServeHTTP(w, req)
			return
		case method == http.MethodGet && n == 1:
			withRoles(r.deps.EvaluationHandler.Get, staff...).ServeHTTP(w, req)
			return
		case method == http.MethodPatch && n == 1:
			withRoles(r.deps.EvaluationHandler.Update, evaluators...).ServeHTTP(w, req)
			return
		}
	}

	http.NotFound(w, req)
}

func withRoles(h http.HandlerFunc, roles ...user.Role) http.Handler {
	return httpmw.RequireRole(roles...)(h)
}

func resource(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
