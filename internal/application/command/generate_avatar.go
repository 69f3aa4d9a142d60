package command

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/eduflow/eduflow-registry/internal/application/registry"
	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/domain/roster"
	"github.com/eduflow/eduflow-registry/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERATE AVATAR COMMAND
// The render happens OUTSIDE the registry lock (the external call can take
// seconds); only the resulting reference is committed under the lock. If the
// student disappears between render and commit, the result is discarded.
// ══════════════════════════════════════════════════════════════════════════════

// AvatarRenderer renders an avatar image for a student name.
// Implemented by the genai client.
type AvatarRenderer interface {
	RenderAvatar(ctx context.Context, name string) ([]byte, error)
}

// GenerateAvatarCommand identifies the student to render for.
type GenerateAvatarCommand struct {
	ID string `json:"id"`
}

// GenerateAvatarResult carries the stored avatar reference.
type GenerateAvatarResult struct {
	AvatarRef string `json:"avatar_ref"`
}

// GenerateAvatarHandler handles the GenerateAvatarCommand.
type GenerateAvatarHandler struct {
	reg      *registry.Registry
	renderer AvatarRenderer
}

// NewGenerateAvatarHandler creates a new handler.
func NewGenerateAvatarHandler(reg *registry.Registry, renderer AvatarRenderer) *GenerateAvatarHandler {
	return &GenerateAvatarHandler{reg: reg, renderer: renderer}
}

// Handle renders the avatar and stores it on the record as a data URI.
func (h *GenerateAvatarHandler) Handle(ctx context.Context, cmd GenerateAvatarCommand) (*GenerateAvatarResult, error) {
	// Snapshot lookup first: render only for students that exist.
	id := record.NormalizeID(cmd.ID)
	var name string
	found := false
	for _, rec := range h.reg.Snapshot() {
		if rec.ID == id {
			name = rec.Name
			found = true
			break
		}
	}
	if !found {
		return nil, shared.ErrRecordNotFound
	}

	img, err := h.renderer.RenderAvatar(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("generate_avatar: %w", err)
	}

	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)

	err = h.reg.Mutate(ctx, "GenerateAvatar", func(rost *roster.Roster) error {
		rec, ok := rost.Search(cmd.ID)
		if !ok {
			return shared.ErrRecordNotFound
		}
		rec.AvatarRef = &ref
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &GenerateAvatarResult{AvatarRef: ref}, nil
}
