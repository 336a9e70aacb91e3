package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"sylmap/internal/config"
	"sylmap/internal/forum"
	"sylmap/internal/models"
	"sylmap/internal/repository"
)

// statusPrefixRe matches exactly one bracketed status label at the start of
// a thread title, case-insensitively, capturing the remainder as the base
// title.
var statusPrefixRe = regexp.MustCompile(`(?i)^\[(` + models.StatusAlternation() + `)\] (.+)$`)

// FormatThreadTitle prefixes a base title with the marker's lifecycle
// status.
func FormatThreadTitle(baseTitle string, status models.MarkerStatus) string {
	return fmt.Sprintf("[%s] %s", status, baseTitle)
}

// ExtractBaseTitle strips a recognized status prefix from a thread title.
// Unrecognized or missing prefixes leave the title untouched.
func ExtractBaseTitle(threadTitle string) string {
	if m := statusPrefixRe.FindStringSubmatch(threadTitle); m != nil {
		return m[2]
	}
	return threadTitle
}

// ThreadSyncService keeps a marker's mirrored discussion thread in step with
// the marker: title status prefix, first-post body and lock state.
type ThreadSyncService struct {
	Repo   repository.Repository
	Forum  forum.Service
	Logger *zap.Logger
	Cfg    config.ThreadsConfig
}

// CreateThreadForMarker opens a discussion thread for a marker and stores
// the thread id on the marker once creation has succeeded. Returns false,
// with the reason logged, whenever thread creation is switched off,
// unconfigured or fails.
func (s *ThreadSyncService) CreateThreadForMarker(ctx context.Context, marker *models.Marker, customTitle string) bool {
	if !s.Cfg.Enabled {
		s.Logger.Debug("thread creation disabled", zap.Uint64("marker_id", marker.ID))
		return false
	}
	if s.Cfg.ForumID == 0 {
		s.Logger.Debug("no destination forum configured", zap.Uint64("marker_id", marker.ID))
		return false
	}
	destination, err := s.Forum.GetForum(ctx, s.Cfg.ForumID)
	if err != nil {
		s.Logger.Error("thread creation failed: forum not found",
			zap.Uint64("forum_id", s.Cfg.ForumID), zap.Error(err))
		return false
	}

	actor := s.resolveActingUser(ctx, marker)
	if actor == nil {
		s.Logger.Error("thread creation failed: no valid acting user",
			zap.Uint64("marker_id", marker.ID))
		return false
	}

	status := models.StatusFromMarker(marker.Active, marker.CreateThread, false)
	baseTitle := customTitle
	if baseTitle == "" {
		baseTitle = marker.Title
	}
	title := FormatThreadTitle(baseTitle, status)

	thread, err := s.Forum.CreateThread(ctx, destination.ID, actor.ID, title, s.threadMessage(marker))
	if err != nil {
		var invalid *forum.ErrInvalidContent
		if errors.As(err, &invalid) {
			s.Logger.Error("thread creation validation failed",
				zap.Uint64("marker_id", marker.ID), zap.Strings("errors", invalid.Messages))
		} else {
			s.Logger.Error("thread creation failed",
				zap.Uint64("marker_id", marker.ID), zap.Error(err))
		}
		return false
	}

	marker.ThreadID = &thread.ID
	if err := s.Repo.SaveMarker(ctx, marker); err != nil {
		s.Logger.Error("storing thread reference on marker failed",
			zap.Uint64("marker_id", marker.ID), zap.Uint64("thread_id", thread.ID), zap.Error(err))
		return false
	}

	if marker.ThreadLock {
		if err := s.Forum.SetOpen(ctx, thread.ID, false); err != nil {
			s.Logger.Error("locking new marker thread failed",
				zap.Uint64("thread_id", thread.ID), zap.Error(err))
		}
	}

	s.Logger.Info("thread created for map marker",
		zap.Uint64("marker_id", marker.ID),
		zap.Uint64("thread_id", thread.ID),
		zap.Uint64("acting_user", actor.ID),
	)
	return true
}

// UpdateThread syncs an existing thread with its marker. Content and title
// updates can be switched off individually; the lock flag is always synced.
func (s *ThreadSyncService) UpdateThread(ctx context.Context, marker *models.Marker, updateContent, updateTitle bool) bool {
	if marker.ThreadID == nil {
		return false
	}
	thread, err := s.Forum.GetThread(ctx, *marker.ThreadID)
	if err != nil {
		s.Logger.Error("thread update failed: thread not found",
			zap.Uint64("marker_id", marker.ID), zap.Uint64("thread_id", *marker.ThreadID), zap.Error(err))
		return false
	}

	success := true

	if updateContent {
		if err := s.Forum.ReplaceFirstPost(ctx, thread.ID, s.threadMessage(marker)); err != nil {
			s.Logger.Error("rewriting thread first post failed",
				zap.Uint64("thread_id", thread.ID), zap.Error(err))
			success = false
		}
	}

	if err := s.Forum.SetOpen(ctx, thread.ID, !marker.ThreadLock); err != nil {
		s.Logger.Error("syncing thread lock state failed",
			zap.Uint64("thread_id", thread.ID), zap.Error(err))
		success = false
	}

	if updateTitle {
		status := models.StatusFromMarker(marker.Active, marker.CreateThread, false)
		title := FormatThreadTitle(ExtractBaseTitle(thread.Title), status)
		if err := s.Forum.UpdateTitle(ctx, thread.ID, title); err != nil {
			s.Logger.Error("updating thread title failed",
				zap.Uint64("thread_id", thread.ID), zap.Error(err))
			success = false
		}
	}

	return success
}

// MarkThreadAsDeleted retitles the thread with the terminal Deleted prefix
// without touching the thread otherwise. Used when the marker itself is
// being removed, regardless of its active flag.
func (s *ThreadSyncService) MarkThreadAsDeleted(ctx context.Context, marker *models.Marker) bool {
	if marker.ThreadID == nil {
		return false
	}
	thread, err := s.Forum.GetThread(ctx, *marker.ThreadID)
	if err != nil {
		s.Logger.Error("marking thread deleted failed: thread not found",
			zap.Uint64("marker_id", marker.ID), zap.Uint64("thread_id", *marker.ThreadID), zap.Error(err))
		return false
	}

	title := FormatThreadTitle(ExtractBaseTitle(thread.Title), models.StatusDeleted)
	if err := s.Forum.UpdateTitle(ctx, thread.ID, title); err != nil {
		s.Logger.Error("marking thread deleted failed",
			zap.Uint64("thread_id", thread.ID), zap.Error(err))
		return false
	}
	return true
}

// HandleMarkerThreadUpdates dispatches after a marker edit: create a thread
// if one is wanted and missing, update it if one exists, otherwise no-op.
func (s *ThreadSyncService) HandleMarkerThreadUpdates(ctx context.Context, marker *models.Marker) bool {
	if marker.CreateThread && marker.ThreadID == nil {
		return s.CreateThreadForMarker(ctx, marker, "")
	}
	if marker.ThreadID != nil {
		return s.UpdateThread(ctx, marker, true, true)
	}
	return true
}

// resolveActingUser picks the identity threads are posted as: the configured
// system account, then the marker owner, then the configured fallback.
func (s *ThreadSyncService) resolveActingUser(ctx context.Context, marker *models.Marker) *models.ForumUser {
	if s.Cfg.SystemUserID != 0 {
		if u, err := s.Forum.GetUser(ctx, s.Cfg.SystemUserID); err == nil {
			return u
		}
	} else if marker.UserID != nil {
		if u, err := s.Forum.GetUser(ctx, *marker.UserID); err == nil {
			return u
		}
	}
	if s.Cfg.FallbackUserID != 0 {
		if u, err := s.Forum.GetUser(ctx, s.Cfg.FallbackUserID); err == nil {
			return u
		}
	}
	return nil
}

func (s *ThreadSyncService) threadMessage(marker *models.Marker) string {
	status := models.StatusFromMarker(marker.Active, marker.CreateThread, false)

	return fmt.Sprintf(
		"[B]Title:[/B] %s\n"+
			"[B]Description:[/B] %s\n"+
			"[B]Location:[/B] %g, %g\n"+
			"[B]Status:[/B] %s\n"+
			"[B]Type:[/B] %s\n\n"+
			"[URL=%s]View on Map[/URL]\n\n"+
			"[CENTER][B]This thread is associated with a map marker[/B][/CENTER]\n"+
			"[CENTER][SIZE=1]Last updated: %s[/SIZE][/CENTER]",
		marker.Title,
		marker.Content,
		marker.Lat, marker.Lng,
		status,
		marker.Type,
		s.Cfg.MapURL,
		time.Now().Format(time.RFC1123),
	)
}
