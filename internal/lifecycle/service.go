// Package lifecycle is the transition engine for complaints. Every mutation
// of a complaint — citizen submission, officer actions, citizen verification,
// and automatic SLA escalation — enters through this package, which owns the
// responsibility-lock invariant: at most one authority is ever accountable
// for a complaint at a time.
//
// Each transition validates its input, checks the guard against the loaded
// record, and commits the row update, the timeline entry, and any handler
// stat increments through the store's single atomic conditional update. Two
// concurrent transitions on the same complaint race on that update; the
// loser gets a conflict error and the record it raced against is untouched.
package lifecycle

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/config"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/idgen"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/storage"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/timeline"
)

// Notifier receives one event per committed transition. The concrete
// transport (websockets, Telegram, ...) is wired at process start and is
// irrelevant here.
type Notifier interface {
	Publish(ev models.Event) error
}

// Service drives the complaint state machine.
type Service struct {
	Storage  storage.Storage
	Notifier Notifier

	now func() time.Time
}

// NewService creates the lifecycle engine over the given store and
// notification sink.
func NewService(st storage.Storage, n Notifier) *Service {
	return &Service{Storage: st, Notifier: n, now: time.Now}
}

// WithClock overrides the engine's time source. Used by tests and nothing
// else.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.now = clock
	return s
}

// PhotoInput is an opaque reference to an already-uploaded photo.
type PhotoInput struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// CreateInput is a citizen's complaint submission.
type CreateInput struct {
	CitizenID   string
	Title       string
	Description string
	Category    string
	Location    models.Location
	// Priority optionally overrides the category default.
	Priority models.Priority
	Photos   []PhotoInput
}

// Create files a new complaint: validates the input, computes the SLA
// deadline from the category table, assigns the human-facing identifier,
// and records the initial timeline entry. Unknown categories are rejected,
// never silently defaulted.
func (s *Service) Create(in CreateInput) (*models.Complaint, error) {
	if in.Title == "" || in.Description == "" || in.Category == "" || in.Location.Address == "" {
		return nil, validationErr("title, description, category and address are required")
	}
	if len(in.Title) > config.MaxTitleLength {
		return nil, validationErr("title must be at most %d characters", config.MaxTitleLength)
	}
	if len(in.Description) > config.MaxDescriptionLength {
		return nil, validationErr("description must be at most %d characters", config.MaxDescriptionLength)
	}
	if in.Priority != "" && !validPriority(in.Priority) {
		return nil, validationErr("invalid priority %q", in.Priority)
	}

	category, err := s.Storage.GetCategoryByName(in.Category)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, validationErr("unknown category %q", in.Category)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
		if category.Essential {
			priority = models.PriorityHigh
		}
	}

	humanID, err := idgen.Next(s.Storage, now)
	if err != nil {
		return nil, err
	}

	complaint := &models.Complaint{
		ComplaintID: humanID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		CitizenID:   in.CitizenID,
		Status:      models.StatusSubmitted,
		Priority:    priority,
		SLA: models.SLAInfo{
			ExpectedDays: category.SLAInDays,
			Deadline:     now.Add(time.Duration(category.SLAInDays) * 24 * time.Hour),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	citizenID := in.CitizenID
	complaint, err = timeline.Append(complaint, models.TimelineEvent{
		Action:         models.ActionSubmitted,
		PerformedBy:    &citizenID,
		Timestamp:      now,
		Details:        "Complaint submitted by citizen",
		CitizenVisible: true,
	})
	if err != nil {
		return nil, err
	}

	for _, p := range in.Photos {
		complaint.EvidencePhotos = append(complaint.EvidencePhotos, models.EvidencePhoto{
			URL:        p.URL,
			PublicID:   p.PublicID,
			UploadedBy: in.CitizenID,
			UploadedAt: now,
			PhotoType:  models.PhotoComplaint,
		})
	}

	err = s.Storage.CreateComplaint(complaint)
	if errors.Is(err, storage.ErrDuplicateID) {
		// Lost the sequence race. Uniqueness matters, density does not.
		complaint.ComplaintID = idgen.Fallback(now)
		err = s.Storage.CreateComplaint(complaint)
	}
	if err != nil {
		return nil, err
	}

	if complaint.Location.Division != "" {
		s.publish(models.Event{
			Topic: models.DivisionTopic(complaint.Location.Division),
			Name:  models.EventNewComplaint,
			Data: models.ComplaintCreated{
				ComplaintID: complaint.ComplaintID,
				Title:       complaint.Title,
				Category:    complaint.Category,
				Location:    complaint.Location,
			},
		})
	}
	return complaint, nil
}

// AcceptInput asks to take responsibility for an unlocked complaint.
type AcceptInput struct {
	ComplaintID string
	ActorID     string
	Note        string
}

// Accept locks the complaint to the acting officer. A repeated accept by the
// officer already holding the lock is a no-op, so a retried request after a
// timeout cannot fail spuriously.
func (s *Service) Accept(in AcceptInput) (*models.Complaint, error) {
	complaint, err := s.loadComplaint(in.ComplaintID)
	if err != nil {
		return nil, err
	}
	actor, err := s.loadAuthority(in.ActorID)
	if err != nil {
		return nil, err
	}

	if complaint.Locked && complaint.CurrentHandlerIs(actor.ID) {
		return complaint, nil
	}
	if complaint.Status.Terminal() {
		return nil, conflictErr("complaint %s is closed", complaint.ComplaintID)
	}
	if complaint.Locked {
		return nil, conflictErr("complaint already accepted by another officer")
	}
	switch complaint.Status {
	case models.StatusSubmitted, models.StatusAssigned, models.StatusReopened, models.StatusEscalated:
	default:
		return nil, conflictErr("complaint cannot be accepted in status %s", complaint.Status)
	}
	if !actor.CoversCategory(complaint.Category) || actor.Authority.Division != complaint.Location.Division {
		return nil, unauthorizedErr("complaint is outside your category or division jurisdiction")
	}

	now := s.now()
	actorID := actor.ID
	complaint.CurrentAuthorityID = &actorID
	complaint.Locked = true
	complaint.Status = models.StatusAccepted

	details := in.Note
	if details == "" {
		details = "Complaint accepted"
	}
	complaint, err = timeline.Append(complaint, models.TimelineEvent{
		Action:         models.ActionAccepted,
		PerformedBy:    &actorID,
		ToAuthority:    &actorID,
		Timestamp:      now,
		Details:        details,
		CitizenVisible: true,
	})
	if err != nil {
		return nil, err
	}
	if err := s.commit(complaint, nil, nil); err != nil {
		return nil, err
	}

	s.publishUpdate(complaint, models.ActionAccepted, actor.ID, now)
	s.notifyUser(complaint.CitizenID, models.SeveritySuccess, complaint.ComplaintID,
		fmt.Sprintf("Your complaint %s was accepted by %s", complaint.ComplaintID, actor.Name))
	return complaint, nil
}

// MarkInProgressInput signals that work has started.
type MarkInProgressInput struct {
	ComplaintID string
	ActorID     string
}

// MarkInProgress moves an accepted complaint to in_progress. Only the
// current handler may do this.
func (s *Service) MarkInProgress(in MarkInProgressInput) (*models.Complaint, error) {
	complaint, err := s.loadComplaint(in.ComplaintID)
	if err != nil {
		return nil, err
	}
	actor, err := s.loadAuthority(in.ActorID)
	if err != nil {
		return nil, err
	}
	if !complaint.CurrentHandlerIs(actor.ID) {
		return nil, unauthorizedErr("only the current handler can update this complaint")
	}
	if complaint.Status == models.StatusInProgress {
		return complaint, nil
	}
	switch complaint.Status {
	case models.StatusAccepted, models.StatusEscalated:
	default:
		return nil, conflictErr("complaint cannot be marked in progress in status %s", complaint.Status)
	}

	now := s.now()
	actorID := actor.ID
	complaint.Status = models.StatusInProgress
	complaint, err = timeline.Append(complaint, models.TimelineEvent{
		Action:         models.ActionInProgress,
		PerformedBy:    &actorID,
		Timestamp:      now,
		Details:        "Work started on this complaint",
		CitizenVisible: true,
	})
	if err != nil {
		return nil, err
	}
	if err := s.commit(complaint, nil, nil); err != nil {
		return nil, err
	}

	s.publishUpdate(complaint, models.ActionInProgress, actor.ID, now)
	s.notifyUser(complaint.CitizenID, models.SeverityInfo, complaint.ComplaintID,
		fmt.Sprintf("Work has started on your complaint %s", complaint.ComplaintID))
	return complaint, nil
}

// ForwardInput transfers responsibility to another authority.
type ForwardInput struct {
	ComplaintID string
	ActorID     string
	// TargetAuthorityID is the target's storage ID or email.
	TargetAuthorityID string
	Reason            string
}

// Forward atomically transfers the responsibility lock from the current
// handler to the target authority. The justification is citizen-visible and
// must carry real content.
func (s *Service) Forward(in ForwardInput) (*models.Complaint, error) {
	if len(in.Reason) < config.MinForwardReasonLength {
		return nil, validationErr("forwarding reason must be at least %d characters", config.MinForwardReasonLength)
	}

	complaint, err := s.loadComplaint(in.ComplaintID)
	if err != nil {
		return nil, err
	}
	actor, err := s.loadAuthority(in.ActorID)
	if err != nil {
		return nil, err
	}
	if !complaint.CurrentHandlerIs(actor.ID) {
		return nil, unauthorizedErr("only the current handler can forward this complaint")
	}
	switch complaint.Status {
	case models.StatusAccepted, models.StatusInProgress, models.StatusReopened, models.StatusEscalated:
	default:
		return nil, conflictErr("complaint cannot be forwarded in status %s", complaint.Status)
	}

	target, err := s.Storage.FindAuthority(in.TargetAuthorityID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFoundErr("no authority found with that email or ID")
	}
	if err != nil {
		return nil, err
	}
	if target.ID == actor.ID {
		return nil, validationErr("cannot forward a complaint to yourself")
	}
	if !target.ActiveAuthority() {
		return nil, validationErr("target authority account is not active")
	}

	now := s.now()
	actorID := actor.ID
	targetID := target.ID
	complaint.CurrentAuthorityID = &targetID
	complaint.Locked = true

	complaint, err = timeline.Append(complaint, models.TimelineEvent{
		Action:         models.ActionForwarded,
		PerformedBy:    &actorID,
		FromAuthority:  &actorID,
		ToAuthority:    &targetID,
		Timestamp:      now,
		Details:        in.Reason,
		CitizenVisible: true,
	})
	if err != nil {
		return nil, err
	}
	if err := s.commit(complaint, nil, nil); err != nil {
		return nil, err
	}

	s.publishUpdate(complaint, models.ActionForwarded, actor.ID, now)
	s.notifyUser(target.ID, models.SeverityInfo, complaint.ComplaintID,
		fmt.Sprintf("Complaint %s was forwarded to you by %s", complaint.ComplaintID, actor.Name))
	s.notifyUser(complaint.CitizenID, models.SeverityInfo, complaint.ComplaintID,
		fmt.Sprintf("Your complaint %s was forwarded to %s", complaint.ComplaintID, target.Name))
	return complaint, nil
}

// ResolveInput claims the problem is fixed, with photo evidence.
type ResolveInput struct {
	ComplaintID string
	ActorID     string
	Note        string
	Photos      []PhotoInput
}

// Resolve moves the complaint to pending_verification and attaches the
// resolution evidence. The citizen has the last word via Verify.
func (s *Service) Resolve(in ResolveInput) (*models.Complaint, error) {
	if len(in.Photos) < config.MinResolutionPhotos {
		return nil, validationErr("at least one resolution photo is required")
	}

	complaint, err := s.loadComplaint(in.ComplaintID)
	if err != nil {
		return nil, err
	}
	actor, err := s.loadAuthority(in.ActorID)
	if err != nil {
		return nil, err
	}
	if !complaint.CurrentHandlerIs(actor.ID) {
		return nil, unauthorizedErr("only the current handler can resolve this complaint")
	}
	switch complaint.Status {
	case models.StatusAccepted, models.StatusInProgress, models.StatusReopened, models.StatusEscalated:
	default:
		return nil, conflictErr("complaint cannot be resolved in status %s", complaint.Status)
	}

	now := s.now()
	actorID := actor.ID
	complaint.Status = models.StatusPendingVerification
	complaint.Locked = true

	photos := make([]models.EvidencePhoto, 0, len(in.Photos))
	for _, p := range in.Photos {
		photos = append(photos, models.EvidencePhoto{
			URL:        p.URL,
			PublicID:   p.PublicID,
			UploadedBy: actor.ID,
			UploadedAt: now,
			PhotoType:  models.PhotoResolution,
		})
	}

	details := in.Note
	if details == "" {
		details = "Marked as resolved"
	}
	complaint, err = timeline.Append(complaint, models.TimelineEvent{
		Action:         models.ActionResolved,
		PerformedBy:    &actorID,
		Timestamp:      now,
		Details:        details,
		CitizenVisible: true,
	})
	if err != nil {
		return nil, err
	}
	if err := s.commit(complaint, photos, nil); err != nil {
		return nil, err
	}
	complaint.EvidencePhotos = append(complaint.EvidencePhotos, photos...)

	s.publishUpdate(complaint, models.ActionResolved, actor.ID, now)
	s.notifyUser(complaint.CitizenID, models.SeverityInfo, complaint.ComplaintID,
		fmt.Sprintf("Your complaint %s is marked resolved. Please verify.", complaint.ComplaintID))
	return complaint, nil
}

// VerifyInput is the citizen's verdict on a claimed resolution.
type VerifyInput struct {
	ComplaintID string
	OwnerID     string
	Accepted    bool
	// Rating 1..5, optional, only meaningful when Accepted.
	Rating   int
	Feedback string
	// Reason is required when rejecting.
	Reason string
}

// Verify closes the loop on a claimed resolution. Acceptance makes the
// complaint terminal and credits the handler's counters; rejection reopens
// it into the unlocked pool and counts a caught false closure. Both the
// status change and the counter update commit in the same transaction.
func (s *Service) Verify(in VerifyInput) (*models.Complaint, error) {
	if in.Rating != 0 && (in.Rating < config.MinRating || in.Rating > config.MaxRating) {
		return nil, validationErr("rating must be between %d and %d", config.MinRating, config.MaxRating)
	}
	if !in.Accepted && in.Reason == "" {
		return nil, validationErr("a reason is required when rejecting a resolution")
	}

	complaint, err := s.loadComplaint(in.ComplaintID)
	if err != nil {
		return nil, err
	}
	if complaint.CitizenID != in.OwnerID {
		return nil, unauthorizedErr("only the complaint owner can verify resolution")
	}
	if complaint.Status != models.StatusPendingVerification {
		return nil, conflictErr("complaint is not awaiting verification (current status: %s)", complaint.Status)
	}
	if complaint.CurrentAuthorityID == nil {
		return nil, conflictErr("complaint has no handler on record")
	}

	now := s.now()
	ownerID := in.OwnerID
	handlerID := *complaint.CurrentAuthorityID
	var delta *storage.HandlerStatDelta

	if in.Accepted {
		complaint.Status = models.StatusResolved
		complaint.Verification = models.Verification{
			Verified:   true,
			VerifiedAt: &now,
			Rating:     in.Rating,
			Feedback:   in.Feedback,
		}

		onTime := 0
		if !now.After(complaint.SLA.Deadline) {
			onTime = 1
		}
		ratingCount := 0
		if in.Rating > 0 {
			ratingCount = 1
		}
		delta = &storage.HandlerStatDelta{
			AuthorityID:    handlerID,
			TotalHandled:   1,
			ResolvedOnTime: onTime,
			TotalRating:    in.Rating,
			RatingCount:    ratingCount,
		}

		complaint, err = timeline.Append(complaint, models.TimelineEvent{
			Action:         models.ActionVerified,
			PerformedBy:    &ownerID,
			Timestamp:      now,
			Details:        "Resolution verified by citizen",
			CitizenVisible: true,
		})
	} else {
		complaint.Status = models.StatusReopened
		// Handler reference is retained for display; the cleared lock is
		// what returns the complaint to the acceptable pool.
		complaint.Locked = false
		delta = &storage.HandlerStatDelta{
			AuthorityID:         handlerID,
			FalseClosuresCaught: 1,
		}

		complaint, err = timeline.Append(complaint, models.TimelineEvent{
			Action:         models.ActionReopened,
			PerformedBy:    &ownerID,
			Timestamp:      now,
			Details:        in.Reason,
			CitizenVisible: true,
		})
	}
	if err != nil {
		return nil, err
	}
	if err := s.commit(complaint, nil, delta); err != nil {
		return nil, err
	}

	if in.Accepted {
		s.publishUpdate(complaint, models.ActionVerified, in.OwnerID, now)
		s.notifyUser(handlerID, models.SeveritySuccess, complaint.ComplaintID,
			fmt.Sprintf("Complaint %s was verified as resolved by the citizen", complaint.ComplaintID))
	} else {
		s.publishUpdate(complaint, models.ActionReopened, in.OwnerID, now)
		s.notifyUser(handlerID, models.SeverityWarning, complaint.ComplaintID,
			fmt.Sprintf("Complaint %s was reopened: the citizen rejected the resolution", complaint.ComplaintID))
	}
	return complaint, nil
}

// Escalate marks an overdue complaint as breached. System-invoked by the
// scheduler; there is no actor. The overdue flag moves false->true exactly
// once per complaint, so a second scheduler instance or an overlapping run
// loses the conditional update and backs off.
func (s *Service) Escalate(complaint *models.Complaint) (*models.Complaint, error) {
	now := s.now()
	if complaint.Status.Terminal() {
		return nil, conflictErr("complaint %s is closed", complaint.ComplaintID)
	}
	if complaint.SLA.Overdue {
		return nil, conflictErr("complaint %s is already escalated", complaint.ComplaintID)
	}
	if !now.After(complaint.SLA.Deadline) {
		return nil, validationErr("complaint %s has not breached its deadline", complaint.ComplaintID)
	}

	complaint.SLA.Overdue = true
	complaint.SLA.BreachedAt = &now
	complaint.Status = models.StatusEscalated

	complaint, err := timeline.Append(complaint, models.TimelineEvent{
		Action:         models.ActionEscalated,
		Timestamp:      now,
		Details:        "Auto-escalated: SLA deadline exceeded",
		CitizenVisible: true,
	})
	if err != nil {
		return nil, err
	}
	if err := s.commit(complaint, nil, nil); err != nil {
		return nil, err
	}

	s.publishUpdate(complaint, models.ActionEscalated, "", now)
	if complaint.Location.Division != "" {
		s.publish(models.Event{
			Topic: models.DivisionTopic(complaint.Location.Division),
			Name:  models.EventComplaintUpdated,
			Data: models.ComplaintUpdate{
				ComplaintID: complaint.ComplaintID,
				Status:      complaint.Status,
				Action:      models.ActionEscalated,
				Timestamp:   now,
			},
		})
	}
	s.notifyUser(complaint.CitizenID, models.SeverityWarning, complaint.ComplaintID,
		fmt.Sprintf("Your complaint %s has been escalated due to SLA breach", complaint.ComplaintID))
	return complaint, nil
}

func (s *Service) loadComplaint(complaintID string) (*models.Complaint, error) {
	if complaintID == "" {
		return nil, validationErr("complaint id is required")
	}
	complaint, err := s.Storage.GetComplaintByID(complaintID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFoundErr("complaint %s not found", complaintID)
	}
	if err != nil {
		return nil, err
	}
	return complaint, nil
}

func (s *Service) loadAuthority(userID string) (*models.User, error) {
	if userID == "" {
		return nil, validationErr("actor id is required")
	}
	user, err := s.Storage.GetUserByID(userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFoundErr("user %s not found", userID)
	}
	if err != nil {
		return nil, err
	}
	if !user.ActiveAuthority() {
		return nil, unauthorizedErr("only an approved authority account can perform this action")
	}
	return user, nil
}

// commit persists the mutated complaint plus the event appended last, and
// maps a lost version race to a conflict error.
func (s *Service) commit(c *models.Complaint, photos []models.EvidencePhoto, delta *storage.HandlerStatDelta) error {
	err := s.Storage.CommitTransition(c, timeline.Last(c), photos, delta)
	if errors.Is(err, storage.ErrVersionConflict) {
		return conflictErr("complaint was updated by someone else, refresh and try again")
	}
	return err
}

// publish sends a realtime event. The transition is already a fact of
// record at this point, so delivery failures are logged, never propagated.
func (s *Service) publish(ev models.Event) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Publish(ev); err != nil {
		log.Printf("ERROR: Failed to publish %s to %s: %v", ev.Name, ev.Topic, err)
	}
}

func (s *Service) publishUpdate(c *models.Complaint, action models.Action, actorID string, at time.Time) {
	s.publish(models.Event{
		Topic: models.ComplaintTopic(c.ComplaintID),
		Name:  models.EventComplaintUpdated,
		Data: models.ComplaintUpdate{
			ComplaintID: c.ComplaintID,
			Status:      c.Status,
			Action:      action,
			Actor:       actorID,
			Timestamp:   at,
		},
	})
}

func (s *Service) notifyUser(userID, severity, complaintID, message string) {
	s.publish(models.Event{
		Topic: models.UserTopic(userID),
		Name:  models.EventNotification,
		Data: models.Notification{
			Message:     message,
			Severity:    severity,
			ComplaintID: complaintID,
		},
	})
}

func validPriority(p models.Priority) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return true
	}
	return false
}
