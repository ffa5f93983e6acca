package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/notify"
	"github.com/sidharth07/verbiforge-sub000/internal/repositories"
	"github.com/sidharth07/verbiforge-sub000/internal/storage"
)

// CreateProjectRequest materializes a quote into a project.
type CreateProjectRequest struct {
	Name string
	QuoteRequest
}

// ProjectService owns project status transitions and their side effects.
type ProjectService struct {
	projects ProjectStore
	users    UserStore
	quotes   *QuoteService
	ids      *IDGenerator
	files    storage.Store
	notifier notify.Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewProjectService(
	projects ProjectStore,
	users UserStore,
	quotes *QuoteService,
	ids *IDGenerator,
	files storage.Store,
	notifier notify.Notifier,
	log *slog.Logger,
) *ProjectService {
	return &ProjectService{
		projects: projects,
		users:    users,
		quotes:   quotes,
		ids:      ids,
		files:    files,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Create prices the document, stores it and records a quote_generated project.
func (s *ProjectService) Create(ctx context.Context, actor models.Actor, req CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(req.FileName)
	}
	quote, err := s.quotes.Analyze(ctx, req.QuoteRequest)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		ID:        uuid.New(),
		OwnerID:   actor.UserID,
		Name:      name,
		FileName:  strings.TrimSpace(req.FileName),
		Status:    models.StatusQuoteGenerated,
		CreatedAt: s.now().UTC(),
	}
	project.ApplyQuote(quote)

	ref, err := s.files.Store(ctx, project.ID.String(), project.FileName, req.Document)
	if err != nil {
		return nil, fmt.Errorf("store source document: %w", err)
	}
	project.SourceFileRef = ref

	project.HumanID = s.ids.NextProjectID(ctx)
	err = s.projects.Create(ctx, project)
	if errors.Is(err, repositories.ErrDuplicate) {
		// a concurrent writer took the same id
		project.HumanID = s.ids.NextProjectID(ctx)
		err = s.projects.Create(ctx, project)
	}
	if err != nil {
		s.removeFile(ctx, ref)
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.log.InfoContext(ctx, "project created", "project", project.HumanID, "owner", actor.HumanID, "total", project.Total.String())
	s.notifyOwner(ctx, notify.EventProjectCreated, project)
	return project, nil
}

// Get returns a project the actor may see. Projects of other users are
// reported as not found.
func (s *ProjectService) Get(ctx context.Context, actor models.Actor, id string) (*models.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != actor.UserID && !actor.IsAdmin() {
		return nil, notFound("project %s not found", id)
	}
	return project, nil
}

// List returns the actor's own projects, or every project for admins.
func (s *ProjectService) List(ctx context.Context, actor models.Actor, status *models.Status) ([]models.Project, error) {
	filter := models.ProjectFilter{Status: status}
	if !actor.IsAdmin() {
		filter.OwnerID = &actor.UserID
	}
	projects, err := s.projects.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Submit moves a quote to submitted. Only the owner may submit, and only once.
func (s *ProjectService) Submit(ctx context.Context, actor models.Actor, id string) (*models.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != actor.UserID {
		return nil, forbidden("only the owner can submit project %s", project.HumanID)
	}
	if project.Status != models.StatusQuoteGenerated {
		return nil, invalidTransition("project %s is already %s", project.HumanID, project.Status)
	}

	now := s.now().UTC()
	project.Status = models.StatusSubmitted
	project.SubmittedAt = &now
	if err := s.projects.UpdateLifecycle(ctx, project); err != nil {
		return nil, s.storeError("submit project", err)
	}

	s.log.InfoContext(ctx, "project submitted", "project", project.HumanID, "owner", actor.HumanID)
	s.notifyOperator(ctx, project)
	return project, nil
}

// SetETA records the estimated turnaround of an active project.
func (s *ProjectService) SetETA(ctx context.Context, actor models.Actor, id string, days int) (*models.Project, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin privileges required")
	}
	if days <= 0 {
		return nil, invalidInput("eta must be a positive number of days")
	}
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.Status.IsActive() {
		return nil, invalidTransition("eta can only be set on active projects, project %s is %s", project.HumanID, project.Status)
	}

	project.ETADays = &days
	if err := s.projects.UpdateLifecycle(ctx, project); err != nil {
		return nil, s.storeError("set eta", err)
	}
	return project, nil
}

// SetStatus lets an operator move an active project between working states.
// A project is completed only by AttachTranslation.
func (s *ProjectService) SetStatus(ctx context.Context, actor models.Actor, id string, status models.Status) (*models.Project, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin privileges required")
	}
	if status == models.StatusCompleted {
		return nil, invalidInput("use the translation upload to complete a project")
	}
	if !status.OperatorSettable() {
		return nil, invalidInput("status %q cannot be set directly", status)
	}
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.Status.IsActive() {
		return nil, invalidTransition("project %s is %s and cannot change status", project.HumanID, project.Status)
	}
	if project.Status == status {
		return project, nil
	}

	project.Status = status
	if project.SubmittedAt == nil {
		now := s.now().UTC()
		project.SubmittedAt = &now
	}
	if err := s.projects.UpdateLifecycle(ctx, project); err != nil {
		return nil, s.storeError("set status", err)
	}
	s.log.InfoContext(ctx, "project status changed", "project", project.HumanID, "status", status, "by", actor.HumanID)
	return project, nil
}

// AttachTranslation stores the translated artifact and completes the project
// whatever its current status. A previous artifact is replaced and removed.
func (s *ProjectService) AttachTranslation(ctx context.Context, actor models.Actor, id, fileName string, data []byte) (*models.Project, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin privileges required")
	}
	if len(data) == 0 {
		return nil, invalidInput("translated file is empty")
	}
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	ref, err := s.files.Store(ctx, project.ID.String(), fileName, data)
	if err != nil {
		return nil, fmt.Errorf("store translated file: %w", err)
	}

	previous := project.TranslatedFileRef
	now := s.now().UTC()
	project.TranslatedFileRef = &ref
	project.Status = models.StatusCompleted
	project.CompletedAt = &now
	if err := s.projects.UpdateLifecycle(ctx, project); err != nil {
		s.removeFile(ctx, ref)
		return nil, s.storeError("attach translation", err)
	}
	if previous != nil && *previous != ref {
		s.removeFile(ctx, *previous)
	}

	s.log.InfoContext(ctx, "project completed", "project", project.HumanID, "by", actor.HumanID)
	s.notifyOwner(ctx, notify.EventProjectCompleted, project)
	return project, nil
}

// Delete removes a project and its files. Owners may withdraw a project until
// work has started; admins may delete any project.
func (s *ProjectService) Delete(ctx context.Context, actor models.Actor, id string) error {
	project, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		if project.OwnerID != actor.UserID {
			return forbidden("only the owner can delete project %s", project.HumanID)
		}
		if !project.Status.OwnerDeletable() {
			return invalidTransition("project %s is %s and can no longer be deleted", project.HumanID, project.Status)
		}
	}

	if err := s.projects.Delete(ctx, project.ID); err != nil {
		return s.storeError("delete project", err)
	}
	s.removeFiles(ctx, fileRefs(*project))
	s.log.InfoContext(ctx, "project deleted", "project", project.HumanID, "by", actor.HumanID)
	return nil
}

// Download is a stored document with the name it should be served under.
type Download struct {
	FileName string
	Data     []byte
}

// SourceDocument returns the uploaded document.
func (s *ProjectService) SourceDocument(ctx context.Context, actor models.Actor, id string) (*Download, error) {
	project, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if project.SourceFileRef == "" {
		return nil, notFound("project %s has no stored source document", project.HumanID)
	}
	return s.download(ctx, project.SourceFileRef, project.FileName)
}

// TranslatedDocument returns the delivered translation of a completed project.
func (s *ProjectService) TranslatedDocument(ctx context.Context, actor models.Actor, id string) (*Download, error) {
	project, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if project.Status != models.StatusCompleted || !project.HasTranslation() {
		return nil, notFound("translation for project %s is not available yet", project.HumanID)
	}
	return s.download(ctx, *project.TranslatedFileRef, translatedName(project))
}

func (s *ProjectService) download(ctx context.Context, ref, name string) (*Download, error) {
	data, err := s.files.Retrieve(ctx, ref)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFound("stored file is missing")
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve file: %w", err)
	}
	return &Download{FileName: name, Data: data}, nil
}

func (s *ProjectService) load(ctx context.Context, id string) (*models.Project, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalidInput("project id is required")
	}
	project, err := s.projects.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("project %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) storeError(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound("project no longer exists")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *ProjectService) notifyOwner(ctx context.Context, kind notify.EventKind, project *models.Project) {
	owner, err := s.users.FindByID(ctx, project.OwnerID)
	if err != nil {
		s.log.WarnContext(ctx, "notification skipped, owner lookup failed", "kind", kind, "project", project.HumanID, "error", err)
		return
	}
	s.deliver(ctx, notify.Event{Kind: kind, Recipient: owner.Email, Data: projectEventData(project, owner)})
}

func (s *ProjectService) notifyOperator(ctx context.Context, project *models.Project) {
	owner, err := s.users.FindByID(ctx, project.OwnerID)
	if err != nil {
		owner = &models.User{}
		s.log.WarnContext(ctx, "owner lookup failed", "project", project.HumanID, "error", err)
	}
	s.deliver(ctx, notify.Event{Kind: notify.EventProjectSubmitted, Data: projectEventData(project, owner)})
}

func (s *ProjectService) deliver(ctx context.Context, event notify.Event) {
	if res := s.notifier.Notify(ctx, event); !res.Success {
		s.log.ErrorContext(ctx, "notification failed", "kind", event.Kind, "error", res.Err)
	}
}

func (s *ProjectService) removeFile(ctx context.Context, ref string) {
	if err := s.files.Delete(ctx, ref); err != nil {
		s.log.WarnContext(ctx, "failed to delete stored file", "ref", ref, "error", err)
	}
}

func (s *ProjectService) removeFiles(ctx context.Context, refs []string) {
	for _, ref := range refs {
		s.removeFile(ctx, ref)
	}
}

func fileRefs(p models.Project) []string {
	var refs []string
	if p.SourceFileRef != "" {
		refs = append(refs, p.SourceFileRef)
	}
	if p.HasTranslation() {
		refs = append(refs, *p.TranslatedFileRef)
	}
	return refs
}

func projectEventData(p *models.Project, owner *models.User) map[string]string {
	return map[string]string{
		"project_id":   p.HumanID,
		"project_name": p.Name,
		"owner_email":  owner.Email,
		"unit_count":   strconv.FormatInt(p.UnitCount, 10),
		"total":        p.Total.String(),
		"status":       string(p.Status),
	}
}

func translatedName(p *models.Project) string {
	ext := ""
	if p.TranslatedFileRef != nil {
		if i := strings.LastIndex(*p.TranslatedFileRef, "."); i > strings.LastIndex(*p.TranslatedFileRef, "/") {
			ext = (*p.TranslatedFileRef)[i:]
		}
	}
	return p.HumanID + "-translated" + ext
}
