package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/medgovern/medflow/logger"
	"github.com/medgovern/medflow/model"
	"go.uber.org/zap"
)

func (s *Server) HandleListUserTasks(w http.ResponseWriter, r *http.Request) {
	userId := r.URL.Query().Get("user")
	tenantId := r.URL.Query().Get("tenant")
	status := model.TaskStatus(r.URL.Query().Get("status"))
	tasks, err := s.engine.ListUserTasks(userId, tenantId, status)
	if err != nil {
		logger.Error("error listing tasks", zap.String("user", userId), zap.String("tenant", tenantId), zap.Error(err))
		respondWithEngineError(w, err)
		return
	}
	if tasks == nil {
		tasks = []model.WorkflowTask{}
	}
	respondWithJSON(w, http.StatusOK, tasks)
}

func (s *Server) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	task, err := s.engine.GetTask(id)
	if err != nil {
		respondWithEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, task)
}

func (s *Server) HandleCompleteTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	var req model.CompleteTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid complete request")
		return
	}
	defer r.Body.Close()
	task, err := s.engine.CompleteTask(r.Context(), id, req.UserId, req.Result, req.Comments)
	if err != nil {
		logger.Error("error completing task", zap.String("task", id), zap.String("user", req.UserId), zap.Error(err))
		respondWithEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, task)
}
