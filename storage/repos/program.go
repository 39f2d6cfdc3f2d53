package repos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/program"
	"github.com/mkulima/kilimo/core/store"
)

type SponsorRepo struct {
	coll store.Collection
}

var _ program.SponsorRepository = (*SponsorRepo)(nil)

func NewSponsorRepo(st store.Store) *SponsorRepo {
	return &SponsorRepo{coll: st.Collection(store.Sponsors)}
}

func (repo *SponsorRepo) CreateSponsor(ctx context.Context, s program.Sponsor) (program.Sponsor, error) {
	if s.ID == "" {
		s.ID = newID()
	}
	data, err := marshalDoc(s)
	if err != nil {
		return program.Sponsor{}, err
	}
	if err = repo.coll.Add(ctx, s.ID, data); err != nil {
		return program.Sponsor{}, errors.Wrap(err, "creating sponsor")
	}
	return s, nil
}

func (repo *SponsorRepo) QueryAllSponsors(ctx context.Context) ([]program.Sponsor, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "name", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying sponsors")
	}
	sponsors := make([]program.Sponsor, 0, len(recs))
	for _, rec := range recs {
		var s program.Sponsor
		if err = unmarshalDoc(rec, &s); err != nil {
			return nil, err
		}
		sponsors = append(sponsors, s)
	}
	return sponsors, nil
}

func (repo *SponsorRepo) GetSponsorByID(ctx context.Context, id string) (program.Sponsor, error) {
	rec, err := repo.coll.Get(ctx, id)
	if err != nil {
		return program.Sponsor{}, trapNotFound(err, program.ErrSponsorNotFound)
	}
	var s program.Sponsor
	if err = unmarshalDoc(rec, &s); err != nil {
		return program.Sponsor{}, err
	}
	return s, nil
}

func (repo *SponsorRepo) UpdateSponsor(ctx context.Context, s program.Sponsor) (program.Sponsor, error) {
	data, err := marshalDoc(s)
	if err != nil {
		return program.Sponsor{}, err
	}
	if err = repo.coll.Update(ctx, s.ID, data); err != nil {
		return program.Sponsor{}, trapNotFound(errors.Wrap(err, "updating sponsor"), program.ErrSponsorNotFound)
	}
	return s, nil
}

func (repo *SponsorRepo) DeleteSponsorsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting sponsors")
}

type BatchRepo struct {
	coll store.Collection
}

var _ program.BatchRepository = (*BatchRepo)(nil)

func NewBatchRepo(st store.Store) *BatchRepo {
	return &BatchRepo{coll: st.Collection(store.Batches)}
}

func (repo *BatchRepo) CreateBatch(ctx context.Context, b program.Batch) (program.Batch, error) {
	if b.ID == "" {
		b.ID = newID()
	}
	data, err := marshalDoc(b)
	if err != nil {
		return program.Batch{}, err
	}
	if err = repo.coll.Add(ctx, b.ID, data); err != nil {
		return program.Batch{}, errors.Wrap(err, "creating batch")
	}
	return b, nil
}

func (repo *BatchRepo) QueryAllBatches(ctx context.Context) ([]program.Batch, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "name", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying batches")
	}
	batches := make([]program.Batch, 0, len(recs))
	for _, rec := range recs {
		var b program.Batch
		if err = unmarshalDoc(rec, &b); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func (repo *BatchRepo) GetBatchByID(ctx context.Context, id string) (program.Batch, error) {
	rec, err := repo.coll.Get(ctx, id)
	if err != nil {
		return program.Batch{}, trapNotFound(err, program.ErrBatchNotFound)
	}
	var b program.Batch
	if err = unmarshalDoc(rec, &b); err != nil {
		return program.Batch{}, err
	}
	return b, nil
}

func (repo *BatchRepo) UpdateBatch(ctx context.Context, b program.Batch) (program.Batch, error) {
	data, err := marshalDoc(b)
	if err != nil {
		return program.Batch{}, err
	}
	if err = repo.coll.Update(ctx, b.ID, data); err != nil {
		return program.Batch{}, trapNotFound(errors.Wrap(err, "updating batch"), program.ErrBatchNotFound)
	}
	return b, nil
}

func (repo *BatchRepo) DeleteBatchesByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting batches")
}

type ExamRepo struct {
	coll store.Collection
}

var _ program.ExamRepository = (*ExamRepo)(nil)

func NewExamRepo(st store.Store) *ExamRepo {
	return &ExamRepo{coll: st.Collection(store.Exams)}
}

func (repo *ExamRepo) CreateExam(ctx context.Context, e program.Exam) (program.Exam, error) {
	if e.ID == "" {
		e.ID = newID()
	}
	data, err := marshalDoc(e)
	if err != nil {
		return program.Exam{}, err
	}
	if err = repo.coll.Add(ctx, e.ID, data); err != nil {
		return program.Exam{}, errors.Wrap(err, "creating exam")
	}
	return e, nil
}

func (repo *ExamRepo) QueryAllExams(ctx context.Context) ([]program.Exam, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "startsAt", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}
	return unmarshalExams(recs)
}

func (repo *ExamRepo) QueryAvailableExams(ctx context.Context) ([]program.Exam, error) {
	recs, err := repo.coll.Find(ctx, "isAvailable", "true", store.Ordering{Field: "startsAt", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying available exams")
	}
	return unmarshalExams(recs)
}

func unmarshalExams(recs []store.Record) ([]program.Exam, error) {
	exams := make([]program.Exam, 0, len(recs))
	for _, rec := range recs {
		var e program.Exam
		if err := unmarshalDoc(rec, &e); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, nil
}

func (repo *ExamRepo) GetExamByID(ctx context.Context, id string) (program.Exam, error) {
	rec, err := repo.coll.Get(ctx, id)
	if err != nil {
		return program.Exam{}, trapNotFound(err, program.ErrExamNotFound)
	}
	var e program.Exam
	if err = unmarshalDoc(rec, &e); err != nil {
		return program.Exam{}, err
	}
	return e, nil
}

func (repo *ExamRepo) UpdateExam(ctx context.Context, e program.Exam) (program.Exam, error) {
	data, err := marshalDoc(e)
	if err != nil {
		return program.Exam{}, err
	}
	if err = repo.coll.Update(ctx, e.ID, data); err != nil {
		return program.Exam{}, trapNotFound(errors.Wrap(err, "updating exam"), program.ErrExamNotFound)
	}
	return e, nil
}

func (repo *ExamRepo) DeleteExamsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting exams")
}

type AnnouncementRepo struct {
	coll store.Collection
}

var _ program.AnnouncementRepository = (*AnnouncementRepo)(nil)

func NewAnnouncementRepo(st store.Store) *AnnouncementRepo {
	return &AnnouncementRepo{coll: st.Collection(store.Announcements)}
}

func (repo *AnnouncementRepo) CreateAnnouncement(ctx context.Context, a program.Announcement) (program.Announcement, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	data, err := marshalDoc(a)
	if err != nil {
		return program.Announcement{}, err
	}
	if err = repo.coll.Add(ctx, a.ID, data); err != nil {
		return program.Announcement{}, errors.Wrap(err, "creating announcement")
	}
	return a, nil
}

func (repo *AnnouncementRepo) QueryAllAnnouncements(ctx context.Context) ([]program.Announcement, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "created_at", Ascending: false})
	if err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	return unmarshalAnnouncements(recs)
}

func (repo *AnnouncementRepo) QueryPublishedAnnouncements(ctx context.Context) ([]program.Announcement, error) {
	recs, err := repo.coll.Find(ctx, "isPublished", "true", store.Ordering{Field: "publishedAt", Ascending: false})
	if err != nil {
		return nil, errors.Wrap(err, "querying published announcements")
	}
	return unmarshalAnnouncements(recs)
}

func unmarshalAnnouncements(recs []store.Record) ([]program.Announcement, error) {
	anns := make([]program.Announcement, 0, len(recs))
	for _, rec := range recs {
		var a program.Announcement
		if err := unmarshalDoc(rec, &a); err != nil {
			return nil, err
		}
		anns = append(anns, a)
	}
	return anns, nil
}

func (repo *AnnouncementRepo) GetAnnouncementByID(ctx context.Context, id string) (program.Announcement, error) {
	rec, err := repo.coll.Get(ctx, id)
	if err != nil {
		return program.Announcement{}, trapNotFound(err, program.ErrAnnouncementNotFound)
	}
	var a program.Announcement
	if err = unmarshalDoc(rec, &a); err != nil {
		return program.Announcement{}, err
	}
	return a, nil
}

func (repo *AnnouncementRepo) UpdateAnnouncement(ctx context.Context, a program.Announcement) (program.Announcement, error) {
	data, err := marshalDoc(a)
	if err != nil {
		return program.Announcement{}, err
	}
	if err = repo.coll.Update(ctx, a.ID, data); err != nil {
		return program.Announcement{}, trapNotFound(errors.Wrap(err, "updating announcement"), program.ErrAnnouncementNotFound)
	}
	return a, nil
}

func (repo *AnnouncementRepo) DeleteAnnouncementsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(repo.coll.BatchDelete(ctx, ids...), "deleting announcements")
}

// SettingRepo keys setting documents by the setting key itself.
type SettingRepo struct {
	coll store.Collection
}

var _ program.SettingRepository = (*SettingRepo)(nil)

func NewSettingRepo(st store.Store) *SettingRepo {
	return &SettingRepo{coll: st.Collection(store.Settings)}
}

func (repo *SettingRepo) GetSetting(ctx context.Context, key string) (program.Setting, error) {
	rec, err := repo.coll.Get(ctx, key)
	if err != nil {
		return program.Setting{}, trapNotFound(err, program.ErrSettingNotFound)
	}
	var s program.Setting
	if err = unmarshalDoc(rec, &s); err != nil {
		return program.Setting{}, err
	}
	return s, nil
}

func (repo *SettingRepo) SetSetting(ctx context.Context, s program.Setting) (program.Setting, error) {
	s.ID = s.Key
	data, err := marshalDoc(s)
	if err != nil {
		return program.Setting{}, err
	}
	if err = repo.coll.Update(ctx, s.ID, data); err != nil {
		if errors.Cause(err) != store.ErrNotFound {
			return program.Setting{}, errors.Wrap(err, "updating setting")
		}
		if err = repo.coll.Add(ctx, s.ID, data); err != nil {
			return program.Setting{}, errors.Wrap(err, "creating setting")
		}
	}
	return s, nil
}

func (repo *SettingRepo) QueryAllSettings(ctx context.Context) ([]program.Setting, error) {
	recs, err := repo.coll.All(ctx, store.Ordering{Field: "key", Ascending: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying settings")
	}
	settings := make([]program.Setting, 0, len(recs))
	for _, rec := range recs {
		var s program.Setting
		if err = unmarshalDoc(rec, &s); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, nil
}

func (repo *SettingRepo) DeleteSetting(ctx context.Context, key string) error {
	if err := repo.coll.Delete(ctx, key); err != nil {
		return trapNotFound(errors.Wrap(err, "deleting setting"), program.ErrSettingNotFound)
	}
	return nil
}
