package program

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrSponsorNotFound      = errors.New("sponsor not found")
	ErrBatchNotFound        = errors.New("batch not found")
	ErrExamNotFound         = errors.New("exam not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrSettingNotFound      = errors.New("setting not found")
)

type (
	SponsorRepository interface {
		CreateSponsor(ctx context.Context, s Sponsor) (Sponsor, error)
		QueryAllSponsors(ctx context.Context) ([]Sponsor, error)
		GetSponsorByID(ctx context.Context, id string) (Sponsor, error)
		UpdateSponsor(ctx context.Context, s Sponsor) (Sponsor, error)
		DeleteSponsorsByID(ctx context.Context, ids ...string) error
	}

	BatchRepository interface {
		CreateBatch(ctx context.Context, b Batch) (Batch, error)
		QueryAllBatches(ctx context.Context) ([]Batch, error)
		GetBatchByID(ctx context.Context, id string) (Batch, error)
		UpdateBatch(ctx context.Context, b Batch) (Batch, error)
		DeleteBatchesByID(ctx context.Context, ids ...string) error
	}

	ExamRepository interface {
		CreateExam(ctx context.Context, e Exam) (Exam, error)
		QueryAllExams(ctx context.Context) ([]Exam, error)
		QueryAvailableExams(ctx context.Context) ([]Exam, error)
		GetExamByID(ctx context.Context, id string) (Exam, error)
		UpdateExam(ctx context.Context, e Exam) (Exam, error)
		DeleteExamsByID(ctx context.Context, ids ...string) error
	}

	AnnouncementRepository interface {
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		QueryAllAnnouncements(ctx context.Context) ([]Announcement, error)
		QueryPublishedAnnouncements(ctx context.Context) ([]Announcement, error)
		GetAnnouncementByID(ctx context.Context, id string) (Announcement, error)
		UpdateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		DeleteAnnouncementsByID(ctx context.Context, ids ...string) error
	}

	SettingRepository interface {
		GetSetting(ctx context.Context, key string) (Setting, error)
		SetSetting(ctx context.Context, s Setting) (Setting, error)
		QueryAllSettings(ctx context.Context) ([]Setting, error)
		DeleteSetting(ctx context.Context, key string) error
	}

	Service struct {
		sponsors      SponsorRepository
		batches       BatchRepository
		exams         ExamRepository
		announcements AnnouncementRepository
		settings      SettingRepository
	}
)

func NewService(
	sponsors SponsorRepository,
	batches BatchRepository,
	exams ExamRepository,
	announcements AnnouncementRepository,
	settings SettingRepository,
) *Service {
	return &Service{
		sponsors:      sponsors,
		batches:       batches,
		exams:         exams,
		announcements: announcements,
		settings:      settings,
	}
}

// Sponsors

func (svc *Service) CreateSponsor(ctx context.Context, ns NewSponsor) (Sponsor, error) {
	now := time.Now().UTC()
	return svc.sponsors.CreateSponsor(ctx, Sponsor{Name: ns.Name, CreatedAt: now, UpdatedAt: now})
}

func (svc *Service) QueryAllSponsors(ctx context.Context) ([]Sponsor, error) {
	return svc.sponsors.QueryAllSponsors(ctx)
}

func (svc *Service) GetSponsor(ctx context.Context, id string) (Sponsor, error) {
	return svc.sponsors.GetSponsorByID(ctx, id)
}

// ActivateSponsor deactivates every sponsor then activates the given one;
// at most one sponsor is active at a time. This is an explicit sequence,
// not a store constraint.
func (svc *Service) ActivateSponsor(ctx context.Context, id string) (Sponsor, error) {
	target, err := svc.sponsors.GetSponsorByID(ctx, id)
	if err != nil {
		return Sponsor{}, err
	}

	all, err := svc.sponsors.QueryAllSponsors(ctx)
	if err != nil {
		return Sponsor{}, errors.Wrap(err, "loading sponsors")
	}
	for _, s := range all {
		if !s.IsActive || s.ID == target.ID {
			continue
		}
		s.IsActive = false
		s.UpdatedAt = time.Now().UTC()
		if _, err := svc.sponsors.UpdateSponsor(ctx, s); err != nil {
			return Sponsor{}, errors.Wrap(err, "deactivating sponsor "+s.ID)
		}
	}

	target.IsActive = true
	target.UpdatedAt = time.Now().UTC()
	return svc.sponsors.UpdateSponsor(ctx, target)
}

func (svc *Service) UpdateSponsor(ctx context.Context, s Sponsor) (Sponsor, error) {
	s.UpdatedAt = time.Now().UTC()
	return svc.sponsors.UpdateSponsor(ctx, s)
}

func (svc *Service) DeleteSponsors(ctx context.Context, ids ...string) error {
	return svc.sponsors.DeleteSponsorsByID(ctx, ids...)
}

// Batches

func (svc *Service) CreateBatch(ctx context.Context, nb NewBatch) (Batch, error) {
	now := time.Now().UTC()
	return svc.batches.CreateBatch(ctx, Batch{Name: nb.Name, Year: nb.Year, CreatedAt: now, UpdatedAt: now})
}

func (svc *Service) QueryAllBatches(ctx context.Context) ([]Batch, error) {
	return svc.batches.QueryAllBatches(ctx)
}

func (svc *Service) GetBatch(ctx context.Context, id string) (Batch, error) {
	return svc.batches.GetBatchByID(ctx, id)
}

func (svc *Service) UpdateBatch(ctx context.Context, b Batch) (Batch, error) {
	b.UpdatedAt = time.Now().UTC()
	return svc.batches.UpdateBatch(ctx, b)
}

func (svc *Service) DeleteBatches(ctx context.Context, ids ...string) error {
	return svc.batches.DeleteBatchesByID(ctx, ids...)
}

// Exams

func (svc *Service) CreateExam(ctx context.Context, ne NewExam) (Exam, error) {
	now := time.Now().UTC()
	return svc.exams.CreateExam(ctx, Exam{
		Title:       ne.Title,
		Description: ne.Description,
		IsAvailable: ne.IsAvailable,
		StartsAt:    ne.StartsAt,
		Duration:    ne.Duration,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) QueryAllExams(ctx context.Context) ([]Exam, error) {
	return svc.exams.QueryAllExams(ctx)
}

// QueryAvailableExams is the public listing shown to trainees.
func (svc *Service) QueryAvailableExams(ctx context.Context) ([]Exam, error) {
	return svc.exams.QueryAvailableExams(ctx)
}

func (svc *Service) GetExam(ctx context.Context, id string) (Exam, error) {
	return svc.exams.GetExamByID(ctx, id)
}

func (svc *Service) UpdateExam(ctx context.Context, e Exam) (Exam, error) {
	e.UpdatedAt = time.Now().UTC()
	return svc.exams.UpdateExam(ctx, e)
}

func (svc *Service) DeleteExams(ctx context.Context, ids ...string) error {
	return svc.exams.DeleteExamsByID(ctx, ids...)
}

// Announcements

func (svc *Service) CreateAnnouncement(ctx context.Context, na NewAnnouncement) (Announcement, error) {
	now := time.Now().UTC()
	a := Announcement{
		Title:       na.Title,
		Body:        na.Body,
		IsPublished: na.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if a.IsPublished {
		a.PublishedAt = now
	}
	return svc.announcements.CreateAnnouncement(ctx, a)
}

func (svc *Service) QueryAllAnnouncements(ctx context.Context) ([]Announcement, error) {
	return svc.announcements.QueryAllAnnouncements(ctx)
}

// QueryPublishedAnnouncements is the public listing.
func (svc *Service) QueryPublishedAnnouncements(ctx context.Context) ([]Announcement, error) {
	return svc.announcements.QueryPublishedAnnouncements(ctx)
}

func (svc *Service) GetAnnouncement(ctx context.Context, id string) (Announcement, error) {
	return svc.announcements.GetAnnouncementByID(ctx, id)
}

func (svc *Service) UpdateAnnouncement(ctx context.Context, a Announcement) (Announcement, error) {
	a.UpdatedAt = time.Now().UTC()
	if a.IsPublished && a.PublishedAt.IsZero() {
		a.PublishedAt = a.UpdatedAt
	}
	return svc.announcements.UpdateAnnouncement(ctx, a)
}

func (svc *Service) DeleteAnnouncements(ctx context.Context, ids ...string) error {
	return svc.announcements.DeleteAnnouncementsByID(ctx, ids...)
}

// Settings

func (svc *Service) GetSetting(ctx context.Context, key string) (Setting, error) {
	return svc.settings.GetSetting(ctx, key)
}

func (svc *Service) SetSetting(ctx context.Context, key, value string) (Setting, error) {
	return svc.settings.SetSetting(ctx, Setting{ID: key, Key: key, Value: value, UpdatedAt: time.Now().UTC()})
}

func (svc *Service) QueryAllSettings(ctx context.Context) ([]Setting, error) {
	return svc.settings.QueryAllSettings(ctx)
}

func (svc *Service) DeleteSetting(ctx context.Context, key string) error {
	return svc.settings.DeleteSetting(ctx, key)
}
