// Package router wires every route to its handler and wraps the mux with
// the shared middleware.
package router

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/roster-api/internal/auth"
	"github.com/aanand-mishra/roster-api/internal/http/handlers/student"
	"github.com/aanand-mishra/roster-api/internal/http/handlers/user"
	"github.com/aanand-mishra/roster-api/internal/http/middleware"
	"github.com/aanand-mishra/roster-api/internal/storage"
	"github.com/aanand-mishra/roster-api/internal/utils/response"
)

// New builds the application handler.
//
// Route table:
//
//	GET    /test                 liveness probe
//	GET    /users                list users
//	GET    /users/{id}           get one user
//	POST   /users                create a user (409 on duplicate email)
//	PUT    /users/{id}           replace a user
//	DELETE /users/{id}           delete a user
//	GET    /students             list students
//	GET    /students/{id}        get one student
//	POST   /students             create a student        (bearer)
//	POST   /students/bulk        create many students    (bearer)
//	PUT    /students/{id}        replace a student       (bearer)
//	DELETE /students/{id}        delete a student        (bearer)
//
// verifier guards the routes marked "bearer"; nil leaves them open.
func New(store storage.Storage, verifier *auth.Verifier, log *slog.Logger) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /test", func(w http.ResponseWriter, _ *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{"message": "Test successful!"})
	})

	router.HandleFunc("GET /users", user.GetList(store))
	router.HandleFunc("GET /users/{id}", user.GetByID(store))
	router.HandleFunc("POST /users", user.New(store))
	router.HandleFunc("PUT /users/{id}", user.Update(store))
	router.HandleFunc("DELETE /users/{id}", user.Delete(store))

	guard := middleware.Bearer(verifier)

	router.HandleFunc("GET /students", student.GetList(store))
	router.HandleFunc("GET /students/{id}", student.GetByID(store))
	router.Handle("POST /students", guard(student.New(store)))
	router.Handle("POST /students/bulk", guard(student.NewBulk(store)))
	router.Handle("PUT /students/{id}", guard(student.Update(store)))
	router.Handle("DELETE /students/{id}", guard(student.Delete(store)))

	return middleware.Chain(router,
		middleware.Logger(log),
		middleware.CORS,
	)
}
