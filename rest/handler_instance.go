package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/medgovern/medflow/logger"
	"github.com/medgovern/medflow/model"
	"go.uber.org/zap"
)

func (s *Server) HandleStartWorkflow(w http.ResponseWriter, r *http.Request) {
	var req model.StartWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid start request")
		return
	}
	defer r.Body.Close()
	instance, err := s.engine.StartWorkflow(r.Context(), req)
	if err != nil {
		logger.Error("error starting workflow", zap.String("definition", req.DefinitionId), zap.Error(err))
		respondWithEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, instance)
}

func (s *Server) HandleListInstances(w http.ResponseWriter, r *http.Request) {
	tenantId := r.URL.Query().Get("tenant")
	status := model.InstanceStatus(r.URL.Query().Get("status"))
	instances, err := s.engine.ListInstances(tenantId, status)
	if err != nil {
		logger.Error("error listing instances", zap.String("tenant", tenantId), zap.Error(err))
		respondWithEngineError(w, err)
		return
	}
	if instances == nil {
		instances = []model.WorkflowInstance{}
	}
	respondWithJSON(w, http.StatusOK, instances)
}

func (s *Server) HandleGetInstance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	instance, err := s.engine.GetInstance(id)
	if err != nil {
		respondWithEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, instance)
}
