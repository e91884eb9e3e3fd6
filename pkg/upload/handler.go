package upload

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/seismic-health/telemed-signaling/pkg/util"
)

// Chunks beyond this size are rejected before buffering.
const maxChunkSize = 32 << 20 // 32 MB

// Handler accepts POST /upload-chunk/{sessionId}/{chunkIndex} requests with a
// multipart "chunk" file field and forwards the body to blob storage as
// {sessionId}/meeting_part{chunkIndex}.webm.
type Handler struct {
	store BlobStore
}

// NewHandler creates an upload handler over a blob store.
func NewHandler(store BlobStore) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	index, err := strconv.Atoi(r.PathValue("chunkIndex"))
	if err != nil || index < 0 || sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid session id or chunk index"})
		return
	}

	if err := r.ParseMultipartForm(maxChunkSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid multipart body"})
		return
	}
	file, _, err := r.FormFile("chunk")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing chunk field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxChunkSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unreadable chunk"})
		return
	}

	blobName := fmt.Sprintf("%s/meeting_part%d.webm", sessionID, index)
	if err := h.store.Put(r.Context(), blobName, "video/webm", data); err != nil {
		util.Error("Chunk upload failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "chunk upload failed"})
		return
	}

	util.Debug("Stored chunk %s (%d bytes)", blobName, len(data))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"chunkIndex": index,
		"blobName":   blobName,
	})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
