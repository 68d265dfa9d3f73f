package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikbrunner/netmark/internal/model"
)

// CurrentSchemaVersion is written into every persisted state blob.
// Blobs without a version field are treated as version 0 and migrated.
const CurrentSchemaVersion = 1

// requiredCollections must be present in a current-version blob.
var requiredCollections = []string{"organizations", "folders", "bookmarks"}

type versionedState struct {
	Version int `json:"version"`
	*model.AppState
}

// EncodeState serializes state with the current schema version.
func EncodeState(state *model.AppState) ([]byte, error) {
	return json.Marshal(versionedState{Version: CurrentSchemaVersion, AppState: state})
}

// DecodeState parses a persisted blob. Unversioned blobs are migrated to
// the current schema and migrated is true; now stamps trashed bookmarks
// that lost their deletion time. Anything unrecognized fails with
// model.ErrCorruptState.
func DecodeState(data []byte, now time.Time) (state *model.AppState, migrated bool, err error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, false, corrupt("not a JSON object: %v", err)
	}

	raw, ok := fields["version"]
	if !ok {
		state, err := decodeLegacy(fields, now)
		return state, err == nil, err
	}

	var version int
	if err := json.Unmarshal(raw, &version); err != nil {
		return nil, false, corrupt("version: %v", err)
	}
	if version != CurrentSchemaVersion {
		return nil, false, corrupt("unsupported schema version %d", version)
	}

	for _, name := range requiredCollections {
		if v, ok := fields[name]; !ok || string(v) == "null" {
			return nil, false, corrupt("missing %s", name)
		}
	}

	state = model.NewAppState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, false, corrupt("%v", err)
	}
	for _, b := range state.Bookmarks {
		switch {
		case b.InTrash() && b.DeletedAt == nil:
			return nil, false, corrupt("bookmark %s is in the trash without deletedAt", b.ID)
		case !b.InTrash() && b.DeletedAt != nil:
			return nil, false, corrupt("bookmark %s has deletedAt outside the trash", b.ID)
		}
	}
	return state, false, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrCorruptState, fmt.Sprintf(format, args...))
}

// Version 0 blobs carry millisecond epoch timestamps and may omit whole
// collections.
type legacyBookmark struct {
	ID        string             `json:"id"`
	OrgID     string             `json:"orgId"`
	FolderID  string             `json:"folderId"`
	Type      model.BookmarkType `json:"type"`
	Name      string             `json:"name"`
	Value     string             `json:"value"`
	Ports     []model.Port       `json:"ports"`
	CreatedAt *int64             `json:"createdAt"`
	DeletedAt *int64             `json:"deletedAt"`
}

func decodeLegacy(fields map[string]json.RawMessage, now time.Time) (*model.AppState, error) {
	state := model.NewAppState()

	if raw, ok := fields["activeOrgId"]; ok {
		var id *string
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, corrupt("activeOrgId: %v", err)
		}
		if id != nil {
			state.ActiveOrgID = *id
		}
	}
	if raw, ok := fields["activeFolderId"]; ok {
		if err := json.Unmarshal(raw, &state.ActiveFolder); err != nil {
			return nil, corrupt("activeFolderId: %v", err)
		}
	}
	if err := decodeOptional(fields, "organizations", &state.Organizations); err != nil {
		return nil, err
	}
	if err := decodeOptional(fields, "folders", &state.Folders); err != nil {
		return nil, err
	}

	var bookmarks []legacyBookmark
	if err := decodeOptional(fields, "bookmarks", &bookmarks); err != nil {
		return nil, err
	}
	for _, lb := range bookmarks {
		b := model.Bookmark{
			ID:       lb.ID,
			OrgID:    lb.OrgID,
			FolderID: lb.FolderID,
			Type:     lb.Type,
			Name:     lb.Name,
			Value:    lb.Value,
			Ports:    model.ClonePorts(lb.Ports),
		}
		if b.Type == "" {
			b.Type = model.TypeURL
		}
		if lb.CreatedAt != nil {
			b.CreatedAt = time.UnixMilli(*lb.CreatedAt)
		}
		switch {
		case b.InTrash() && lb.DeletedAt == nil:
			t := now
			b.DeletedAt = &t
		case b.InTrash():
			t := time.UnixMilli(*lb.DeletedAt)
			b.DeletedAt = &t
		}
		state.Bookmarks = append(state.Bookmarks, b)
	}

	return state, nil
}

// decodeOptional unmarshals fields[name] into dst when present and not
// null. dst keeps its empty value otherwise.
func decodeOptional[T any](fields map[string]json.RawMessage, name string, dst *[]T) error {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return corrupt("%s: %v", name, err)
	}
	if out != nil {
		*dst = out
	}
	return nil
}
