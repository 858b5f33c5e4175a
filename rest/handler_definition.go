package rest

import (
	"encoding/json"
	"net/http"

	"github.com/medgovern/medflow/logger"
	"github.com/medgovern/medflow/model"
	"go.uber.org/zap"
)

func (s *Server) HandleListDefinitions(w http.ResponseWriter, r *http.Request) {
	tenantId := r.URL.Query().Get("tenant")
	defs, err := s.definitions.ListActive(tenantId)
	if err != nil {
		logger.Error("error listing definitions", zap.String("tenant", tenantId), zap.Error(err))
		respondWithEngineError(w, err)
		return
	}
	summaries := make([]model.DefinitionSummary, 0, len(defs))
	for _, def := range defs {
		summaries = append(summaries, model.DefinitionSummary{
			Id:      def.Id,
			Name:    def.Name,
			Type:    def.ProcessType,
			Version: def.Version,
			Status:  def.Status,
		})
	}
	respondWithJSON(w, http.StatusOK, summaries)
}

func (s *Server) HandleCreateDefinition(w http.ResponseWriter, r *http.Request) {
	var def model.WorkflowDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid definition payload")
		return
	}
	defer r.Body.Close()
	stored, err := s.definitions.Save(def)
	if err != nil {
		logger.Error("error storing definition", zap.String("name", def.Name), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, stored)
}
