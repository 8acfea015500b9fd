package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marmos91/ramfs/internal/logger"
	"github.com/marmos91/ramfs/pkg/vfs"
)

// MountsHandler serves the mount administration endpoints.
type MountsHandler struct {
	registry *vfs.Registry
}

// NewMountsHandler creates a mounts handler backed by the given
// registry.
func NewMountsHandler(registry *vfs.Registry) *MountsHandler {
	return &MountsHandler{registry: registry}
}

// mountInfo is the JSON shape of one mount.
type mountInfo struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Options   string    `json:"options,omitempty"`
	MountedAt time.Time `json:"mounted_at"`
	LiveNodes int64     `json:"live_nodes"`
	Magic     string    `json:"magic"`
}

func toMountInfo(m *vfs.Mount) mountInfo {
	stat := m.Super.Statfs()
	return mountInfo{
		ID:        m.ID.String(),
		Type:      m.Type,
		Options:   m.Options,
		MountedAt: m.MountedAt,
		LiveNodes: stat.Nodes,
		Magic:     "0x" + strconv.FormatUint(stat.Magic, 16),
	}
}

// List handles GET /api/v1/mounts.
func (h *MountsHandler) List(w http.ResponseWriter, r *http.Request) {
	mounts := h.registry.ListMounts()
	infos := make([]mountInfo, 0, len(mounts))
	for _, m := range mounts {
		infos = append(infos, toMountInfo(m))
	}
	writeJSON(w, http.StatusOK, okResponse(infos))
}

// createMountRequest is the JSON body of POST /api/v1/mounts.
type createMountRequest struct {
	Type    string `json:"type"`
	Options string `json:"options"`
}

// Create handles POST /api/v1/mounts.
func (h *MountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}
	if req.Type == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("type is required"))
		return
	}

	m, err := h.registry.Mount(req.Type, req.Options)
	if err != nil {
		status := http.StatusInternalServerError
		var fsErr *vfs.FSError
		if errors.As(err, &fsErr) && fsErr.Code == vfs.ErrInvalidArgument {
			status = http.StatusBadRequest
		}
		if _, ok := h.registry.GetFilesystem(req.Type); !ok {
			status = http.StatusNotFound
		}
		writeJSON(w, status, errorResponse(err.Error()))
		return
	}

	logger.Info("mount created via API",
		logger.FSType(m.Type),
		logger.MountID(m.ID.String()))
	writeJSON(w, http.StatusCreated, okResponse(toMountInfo(m)))
}

// Get handles GET /api/v1/mounts/{id}.
func (h *MountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid mount id"))
		return
	}

	m, ok := h.registry.GetMount(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("mount not found"))
		return
	}
	writeJSON(w, http.StatusOK, okResponse(toMountInfo(m)))
}

// Delete handles DELETE /api/v1/mounts/{id}.
func (h *MountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid mount id"))
		return
	}

	if _, ok := h.registry.GetMount(id); !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("mount not found"))
		return
	}
	if err := h.registry.Unmount(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}

	logger.Info("mount removed via API", logger.MountID(id.String()))
	writeJSON(w, http.StatusOK, okResponse(nil))
}

// Filesystems handles GET /api/v1/filesystems.
func (h *MountsHandler) Filesystems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, okResponse(h.registry.ListFilesystems()))
}
