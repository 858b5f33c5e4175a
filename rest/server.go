package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/medgovern/medflow/engine"
	"github.com/medgovern/medflow/logger"
	"github.com/medgovern/medflow/metadata"
	"github.com/medgovern/medflow/persistence"
	"go.uber.org/zap"
)

type Server struct {
	http.Server
	Port        int
	definitions metadata.DefinitionService
	engine      *engine.Engine
}

func NewServer(httpPort int, definitions metadata.DefinitionService, eng *engine.Engine) (*Server, error) {
	s := &Server{
		Server: http.Server{
			Addr:        fmt.Sprintf(":%d", httpPort),
			IdleTimeout: 2 * time.Second,
		},
		definitions: definitions,
		engine:      eng,
		Port:        httpPort,
	}

	router := mux.NewRouter()
	router.HandleFunc("/metadata/definitions", s.HandleListDefinitions).Methods(http.MethodGet)
	router.HandleFunc("/metadata/definitions", s.HandleCreateDefinition).Methods(http.MethodPut)

	router.HandleFunc("/execution", s.HandleStartWorkflow).Methods(http.MethodPost)
	router.HandleFunc("/execution", s.HandleListInstances).Methods(http.MethodGet)
	router.HandleFunc("/execution/{id}", s.HandleGetInstance).Methods(http.MethodGet)

	router.HandleFunc("/tasks", s.HandleListUserTasks).Methods(http.MethodGet)
	router.HandleFunc("/tasks/{id}", s.HandleGetTask).Methods(http.MethodGet)
	router.HandleFunc("/tasks/{id}/complete", s.HandleCompleteTask).Methods(http.MethodPost)

	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting http server on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server")
	}
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithEngineError maps the engine error taxonomy onto http statuses:
// bad ids are 404, race losers 409, assignee mismatches 403.
func respondWithEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrDefinitionNotFound),
		errors.Is(err, engine.ErrInstanceNotFound),
		errors.Is(err, engine.ErrTaskNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrTaskAlreadyCompleted),
		errors.Is(err, engine.ErrConcurrentModification):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrNotAuthorized):
		respondWithError(w, http.StatusForbidden, err.Error())
	default:
		var notFound persistence.NotFoundError
		if errors.As(err, &notFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
