package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	contentmodel "resumecms/internal/content/model"
	contentrepo "resumecms/internal/content/repository"
	contentservice "resumecms/internal/content/service"
	"resumecms/internal/publish/model"
	"resumecms/internal/publish/repository"
	"resumecms/pkg/apperror"
	"resumecms/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	reg    *contentservice.Registry
	ledger *repository.MemoryLedger
	svc    *PublishService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := contentservice.NewRegistry(contentrepo.NewMemoryStores())
	ledger := repository.NewMemoryLedger()
	svc, err := NewPublishService(Stages(reg), ledger, nil, nil)
	require.NoError(t, err)

	clock := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return &fixture{reg: reg, ledger: ledger, svc: svc}
}

type spyNotifier struct {
	userIDs []string
	results []model.PublishResult
}

func (s *spyNotifier) NotifyPublished(userID string, result model.PublishResult) {
	s.userIDs = append(s.userIDs, userID)
	s.results = append(s.results, result)
}

type failingLedger struct {
	repository.Ledger
}

func (failingLedger) Append(ctx context.Context, snap *model.Snapshot) (string, error) {
	return "", errors.New("ledger unavailable")
}

func TestPublishEmptySystem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.svc.Publish(ctx, "admin", nil)
	require.NoError(t, err)
	assert.Len(t, result.SectionsPublished, 7)
	assert.Equal(t, contentmodel.SectionNames(), result.SectionsPublished)
	assert.NotEmpty(t, result.VersionID)

	status, err := f.svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.VersionCount)
	require.NotNil(t, status.LastPublishedAt)
	assert.True(t, result.PublishedAt.Equal(*status.LastPublishedAt))

	snap, err := f.svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, contentmodel.SectionNames(), snap.Content.Keys())
	hero, _ := snap.Content.Get("hero")
	assert.JSONEq(t, `{}`, string(hero))
	experiences, _ := snap.Content.Get("experiences")
	assert.JSONEq(t, `{"items":[]}`, string(experiences))
	skills, _ := snap.Content.Get("skills")
	assert.JSONEq(t, `{"categories":[]}`, string(skills))

	draft, err := f.reg.Hero.GetDraft(ctx)
	require.NoError(t, err)
	assert.Nil(t, draft, "publish must not create drafts")
}

func TestStatusNeverPublished(t *testing.T) {
	f := newFixture(t)
	status, err := f.svc.Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status.LastPublishedAt)
	assert.Equal(t, int64(0), status.VersionCount)

	_, err = f.svc.Latest(context.Background())
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestPublishHeroGetsNewIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	draft, err := f.reg.UpsertHero(ctx, contentmodel.Hero{Tagline: contentmodel.LocalizedText{"en": "Developer"}})
	require.NoError(t, err)

	_, err = f.svc.Publish(ctx, "admin", nil)
	require.NoError(t, err)

	published, err := f.reg.Hero.GetPublished(ctx)
	require.NoError(t, err)
	require.NotNil(t, published)
	assert.Equal(t, contentmodel.Published, published.ContentState)
	assert.Equal(t, "Developer", published.Payload.Tagline["en"])
	assert.NotEqual(t, draft.ID, published.ID)

	again, err := f.reg.Hero.GetDraft(ctx)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, again.ID, "draft survives publish")
}

func TestPublishTwiceYieldsEqualContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.reg.Experiences.Add(ctx, contentmodel.ExperienceItem{Company: contentmodel.LocalizedText{"en": "Acme"}}, nil)
	require.NoError(t, err)

	first, err := f.svc.Publish(ctx, "admin", nil)
	require.NoError(t, err)
	firstSnap, err := f.svc.Latest(ctx)
	require.NoError(t, err)

	label := "second"
	second, err := f.svc.Publish(ctx, "admin", &label)
	require.NoError(t, err)
	secondSnap, err := f.svc.Latest(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.VersionID, second.VersionID)
	assert.False(t, second.PublishedAt.Before(first.PublishedAt))
	assert.True(t, firstSnap.Content.Equal(secondSnap.Content))
	assert.Equal(t, "second", *secondSnap.Label)

	count, err := f.ledger.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestPublishedEqualsDraftAndStaysIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.reg.Skills.Add(ctx, contentmodel.SkillCategory{
		Name:  contentmodel.LocalizedText{"en": "Backend"},
		Items: []contentmodel.SkillItem{{Name: "Go"}},
	}, nil)
	require.NoError(t, err)

	_, err = f.svc.Publish(ctx, "admin", nil)
	require.NoError(t, err)

	draft, err := f.reg.Skills.List(ctx)
	require.NoError(t, err)
	published, err := f.reg.Skills.ListPublished(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(draft, published); diff != "" {
		t.Errorf("published skills differ from draft (-draft +published):\n%s", diff)
	}

	_, err = f.reg.Skills.Add(ctx, contentmodel.SkillCategory{Name: contentmodel.LocalizedText{"en": "Frontend"}}, nil)
	require.NoError(t, err)
	published, err = f.reg.Skills.ListPublished(ctx)
	require.NoError(t, err)
	assert.Len(t, published, 1, "draft edits after publish do not leak")
}

func TestPublishKeepsOnePublishedPerSection(t *testing.T) {
	ctx := context.Background()
	stores := contentrepo.NewMemoryStores()
	reg := contentservice.NewRegistry(stores)
	svc, err := NewPublishService(Stages(reg), repository.NewMemoryLedger(), nil, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Publish(ctx, "admin", nil)
		require.NoError(t, err)
	}
	hero := stores.Hero.(*contentrepo.MemoryStore[contentmodel.Hero])
	assert.Equal(t, 1, hero.Len())
}

func TestPublishCloneFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.reg.UpsertHero(ctx, contentmodel.Hero{Tagline: contentmodel.LocalizedText{"en": "Developer"}})
	require.NoError(t, err)
	_, err = f.reg.Projects.Add(ctx, contentmodel.ProjectItem{Title: contentmodel.LocalizedText{"en": "CMS"}}, nil)
	require.NoError(t, err)

	f.svc.Stages[2] = NewStage(f.reg.Projects.Lifecycle, func(contentmodel.Projects) (contentmodel.Projects, error) {
		return contentmodel.Projects{}, errors.New("cyclic payload")
	})

	_, err = f.svc.Publish(ctx, "admin", nil)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePublishFailed, appErr.Code)
	assert.ErrorIs(t, err, ErrCloneFailed)

	status, err := f.svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), status.VersionCount)

	// Without a transaction the hero swap that ran first stays in place.
	hero, err := f.reg.Hero.GetPublished(ctx)
	require.NoError(t, err)
	require.NotNil(t, hero)
	assert.Equal(t, "Developer", hero.Payload.Tagline["en"])
}

func TestPublishLedgerFailure(t *testing.T) {
	ctx := context.Background()
	reg := contentservice.NewRegistry(contentrepo.NewMemoryStores())
	notifier := &spyNotifier{}
	svc, err := NewPublishService(Stages(reg), failingLedger{repository.NewMemoryLedger()}, nil, notifier)
	require.NoError(t, err)

	_, err = svc.Publish(ctx, "admin", nil)
	assert.True(t, apperror.Is(err, apperror.CodePublishFailed))
	assert.ErrorContains(t, err, "ledger unavailable")
	assert.Empty(t, notifier.results)
}

func TestPublishRollsBackSQLTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	reg := contentservice.NewRegistry(contentrepo.NewMemoryStores())
	svc, err := NewPublishService(Stages(reg), failingLedger{repository.NewMemoryLedger()}, store.SQLTx{DB: db}, nil)
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), "admin", nil)
	assert.True(t, apperror.Is(err, apperror.CodePublishFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishCommitsSQLTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	reg := contentservice.NewRegistry(contentrepo.NewMemoryStores())
	svc, err := NewPublishService(Stages(reg), repository.NewMemoryLedger(), store.SQLTx{DB: db}, nil)
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), "admin", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishNotifies(t *testing.T) {
	reg := contentservice.NewRegistry(contentrepo.NewMemoryStores())
	notifier := &spyNotifier{}
	svc, err := NewPublishService(Stages(reg), repository.NewMemoryLedger(), nil, notifier)
	require.NoError(t, err)

	result, err := svc.Publish(context.Background(), "admin", nil)
	require.NoError(t, err)
	require.Len(t, notifier.results, 1)
	assert.Equal(t, "admin", notifier.userIDs[0])
	assert.Equal(t, result.VersionID, notifier.results[0].VersionID)
}

func TestNewPublishServiceRejectsStageOrder(t *testing.T) {
	reg := contentservice.NewRegistry(contentrepo.NewMemoryStores())
	stages := Stages(reg)
	stages[0], stages[1] = stages[1], stages[0]
	_, err := NewPublishService(stages, repository.NewMemoryLedger(), nil, nil)
	assert.Error(t, err)

	_, err = NewPublishService(Stages(reg)[:6], repository.NewMemoryLedger(), nil, nil)
	assert.Error(t, err)
}

func TestPreviewDoesNotCreateDrafts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.reg.SocialLinks.Add(ctx, contentmodel.SocialLinkItem{Platform: "github", URL: "https://github.com/a"}, nil)
	require.NoError(t, err)

	content, err := f.svc.Preview(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, contentmodel.SectionNames(), content.Keys())

	hero, _ := content.Get("hero")
	assert.JSONEq(t, `{}`, string(hero))
	links, _ := content.Get("socialLinks")
	var decoded contentmodel.SocialLinks
	require.NoError(t, json.Unmarshal(links, &decoded))
	require.Len(t, decoded.Items, 1)
	assert.Equal(t, "github", decoded.Items[0].Platform)

	draft, err := f.reg.Hero.GetDraft(ctx)
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestPreviewReducesLocalizedFieldsToOneLocale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.reg.UpsertHero(ctx, contentmodel.Hero{
		Tagline: contentmodel.LocalizedText{"en": "Developer", "vi": "Lập trình viên"},
		Bio:     contentmodel.LocalizedText{"en": "Hello"},
	})
	require.NoError(t, err)
	exp, err := f.reg.Experiences.Add(ctx, contentmodel.ExperienceItem{
		Company:      contentmodel.LocalizedText{"en": "Acme", "vi": "Acme VN"},
		BulletPoints: map[string][]string{"vi": {"Xây dựng API"}},
		TechUsed:     []string{"Go"},
	}, nil)
	require.NoError(t, err)
	_, err = f.reg.SocialLinks.Add(ctx, contentmodel.SocialLinkItem{Platform: "github", URL: "https://github.com/a"}, nil)
	require.NoError(t, err)

	content, err := f.svc.Preview(ctx, " VI ")
	require.NoError(t, err)
	assert.Equal(t, contentmodel.SectionNames(), content.Keys())

	hero, _ := content.Get("hero")
	assert.JSONEq(t, `{"tagline":"Lập trình viên","bio":null,"fullName":null,"title":null}`, string(hero))

	experiences, _ := content.Get("experiences")
	assert.JSONEq(t, `{"items":[{"itemId":"`+exp.ItemID+`","order":0,"company":"Acme VN","role":null,"bulletPoints":["Xây dựng API"],"techUsed":["Go"]}]}`, string(experiences))

	links, _ := content.Get("socialLinks")
	assert.Contains(t, string(links), `"platform":"github"`)

	skills, _ := content.Get("skills")
	assert.JSONEq(t, `{}`, string(skills))
}

func TestPreviewIgnoresUnsupportedLocale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.reg.UpsertHero(ctx, contentmodel.Hero{Tagline: contentmodel.LocalizedText{"en": "Developer", "vi": "Lập trình viên"}})
	require.NoError(t, err)

	content, err := f.svc.Preview(ctx, "fr")
	require.NoError(t, err)
	hero, _ := content.Get("hero")
	assert.JSONEq(t, `{"tagline":{"en":"Developer","vi":"Lập trình viên"}}`, string(hero))
}

func TestLocalizePayloadKeepsKeyOrder(t *testing.T) {
	out, err := localizePayload(contentmodel.SectionSkills,
		[]byte(`{"categories":[{"categoryId":"c","name":{"en":"Backend","vi":"Phía máy chủ"},"items":[],"order":2}]}`), "en")
	require.NoError(t, err)
	assert.Equal(t, `{"categories":[{"categoryId":"c","name":"Backend","items":[],"order":2}]}`, string(out))

	same, err := localizePayload(contentmodel.SectionSocialLinks, []byte(`{"items":[]}`), "en")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(same))

	_, err = localizePayload(contentmodel.SectionHero, []byte(`{"tagline":"plain"}`), "en")
	assert.Error(t, err)
}

func TestDeepCopyIsIndependent(t *testing.T) {
	src := contentmodel.Hero{Tagline: contentmodel.LocalizedText{"en": "Developer"}}
	dst, err := DeepCopy(src)
	require.NoError(t, err)
	src.Tagline["en"] = "Changed"
	assert.Equal(t, "Developer", dst.Tagline["en"])

	_, err = DeepCopy(map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}
