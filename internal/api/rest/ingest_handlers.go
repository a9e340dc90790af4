package rest

import (
	"errors"
	"net/http"

	"github.com/fortuna/courtside/internal/ingest"
	"github.com/fortuna/courtside/internal/runs"
)

// SchedulerStatus reports the scheduled ingestion settings
type SchedulerStatus interface {
	GetStatus() map[string]interface{}
}

// IngestHandler proxies API calls to the runs service.
type IngestHandler struct {
	service   *runs.Service
	scheduler SchedulerStatus
}

// NewIngestHandler wires the REST layer to the runs service.
func NewIngestHandler(service *runs.Service, scheduler SchedulerStatus) *IngestHandler {
	return &IngestHandler{service: service, scheduler: scheduler}
}

// HandleIngestRequest handles POST /api/v1/ingest
func (h *IngestHandler) HandleIngestRequest(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.Trigger(r.Context(), ingest.TriggerAPI)
	if err != nil {
		if errors.Is(err, runs.ErrRunInProgress) {
			respondError(w, http.StatusConflict, "An ingestion run is already in progress", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to start ingestion run", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"run": runPayload(run),
	})
}

// HandleIngestStatus handles GET /api/v1/ingest/status
func (h *IngestHandler) HandleIngestStatus(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetStatus(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch status", err)
		return
	}

	payload := buildStatusPayload(summary)
	if h.scheduler != nil {
		payload["scheduler"] = h.scheduler.GetStatus()
	}
	respondJSON(w, http.StatusOK, payload)
}

func buildStatusPayload(summary *runs.StatusSummary) map[string]interface{} {
	response := map[string]interface{}{
		"status": "idle",
	}

	if summary.ActiveRun != nil {
		response["status"] = summary.ActiveRun.Status
		response["active_run"] = runPayload(summary.ActiveRun)
	}

	history := make([]map[string]interface{}, 0, len(summary.History))
	for _, run := range summary.History {
		history = append(history, runPayload(run))
	}

	response["history"] = history
	return response
}

func runPayload(run *runs.Run) map[string]interface{} {
	if run == nil {
		return nil
	}

	payload := map[string]interface{}{
		"run_id":           run.RunID,
		"trigger":          run.Trigger,
		"team_id":          run.TeamCode,
		"season":           run.Season,
		"status":           run.Status,
		"teams_upserted":   run.TeamsUpserted,
		"players_upserted": run.PlayersUpserted,
		"stats_replaced":   run.StatsReplaced,
		"records_skipped":  run.RecordsSkipped,
		"used_fallback":    run.UsedFallback,
		"error_count":      run.ErrorCount,
		"started_at":       run.StartedAt,
	}

	if run.Summary.Valid {
		payload["summary"] = run.Summary.String
	}
	if run.FinishedAt.Valid {
		payload["finished_at"] = run.FinishedAt.Time
	}

	return payload
}
