package service

import (
	"context"
	"database/sql"
	"time"

	"finkiranked/internal/common"
	"finkiranked/internal/domain/model"
	"finkiranked/internal/domain/repository"
)

// In-memory repository fakes. The repositories are interfaces precisely so
// services can be tested without a database; the *sql.Tx parameters are
// accepted and ignored.

type fakeUserRepo struct {
	users map[string]*model.User

	// solvedOnLock simulates a concurrent submission winning the race: the
	// flag is already set by the time the row lock is taken.
	solvedOnLock bool

	lastAward  *repository.DailyAward
	resetCount int64
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	m := make(map[string]*model.User)
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserRepo{users: m}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return common.ErrConflict
		}
	}
	cp := *user // The caller may mutate its copy afterwards, a row would not
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	if f.solvedOnLock {
		cp.SolvedDailyChallenge = true
	}
	return &cp, nil
}

func (f *fakeUserRepo) IncrementAttempts(ctx context.Context, id string) (int, error) {
	u, ok := f.users[id]
	if !ok {
		return 0, common.ErrNotFound
	}
	u.Attempts++
	return u.Attempts, nil
}

func (f *fakeUserRepo) ApplyDailyAward(ctx context.Context, tx *sql.Tx, id string, award repository.DailyAward) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Points += award.Score
	u.Attempts++
	u.SolvedProblems++
	u.SolvedDailyChallenge = true
	u.DailyPoints = award.Score
	u.Rank = award.NewRank
	f.lastAward = &award
	return nil
}

func (f *fakeUserRepo) ResetDailyState(ctx context.Context) (int64, error) {
	for _, u := range f.users {
		u.Attempts = 0
		u.DailyPoints = 0
		u.SolvedDailyChallenge = false
	}
	f.resetCount++
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) ListLeaderboard(ctx context.Context, limit, offset int) ([]model.LeaderboardEntry, int, error) {
	entries := []model.LeaderboardEntry{}
	pos := 0
	for _, u := range f.users {
		pos++
		entries = append(entries, model.LeaderboardEntry{
			Position: pos, UserID: u.ID, Username: u.Username,
			Points: u.Points, Rank: u.Rank, SolvedProblems: u.SolvedProblems,
		})
	}
	return entries, len(f.users), nil
}

type fakeChallengeRepo struct {
	challenges map[string]*model.Challenge
	testCases  map[string]*model.TestCase

	attempted int
	solved    int
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{
		challenges: make(map[string]*model.Challenge),
		testCases:  make(map[string]*model.TestCase),
	}
}

func (f *fakeChallengeRepo) add(ch *model.Challenge, tcs ...*model.TestCase) {
	f.challenges[ch.ID] = ch
	for _, tc := range tcs {
		f.testCases[tc.ID] = tc
	}
}

func (f *fakeChallengeRepo) CreateChallenge(ctx context.Context, tx *sql.Tx, ch *model.Challenge) error {
	for _, existing := range f.challenges {
		if existing.Slug == ch.Slug {
			return common.ErrConflict
		}
	}
	f.challenges[ch.ID] = ch
	return nil
}

func (f *fakeChallengeRepo) AddTestCases(ctx context.Context, tx *sql.Tx, challengeID string, testCases []model.TestCase) error {
	for i := range testCases {
		tc := testCases[i]
		f.testCases[tc.ID] = &tc
	}
	return nil
}

func (f *fakeChallengeRepo) FindChallengeByID(ctx context.Context, id string) (*model.Challenge, error) {
	ch, ok := f.challenges[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return ch, nil
}

func (f *fakeChallengeRepo) FindChallengeBySlug(ctx context.Context, slug string) (*model.Challenge, error) {
	for _, ch := range f.challenges {
		if ch.Slug == slug {
			return ch, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeChallengeRepo) FindChallengeByDay(ctx context.Context, day time.Time) (*model.Challenge, error) {
	for _, ch := range f.challenges {
		if !ch.Expired && ch.SolveDate.Format("2006-01-02") == day.Format("2006-01-02") {
			return ch, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeChallengeRepo) ListChallenges(ctx context.Context, day time.Time, limit, offset int, includeUpcoming bool) ([]model.Challenge, int, error) {
	out := []model.Challenge{}
	for _, ch := range f.challenges {
		if !includeUpcoming && ch.SolveDate.Format("2006-01-02") > day.Format("2006-01-02") {
			continue
		}
		out = append(out, *ch)
	}
	return out, len(out), nil
}

func (f *fakeChallengeRepo) GetTestCase(ctx context.Context, id string) (*model.TestCase, error) {
	tc, ok := f.testCases[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return tc, nil
}

func (f *fakeChallengeRepo) GetTestCasesByChallengeID(ctx context.Context, challengeID string) ([]model.TestCase, error) {
	var out []model.TestCase
	for _, tc := range f.testCases {
		if tc.ChallengeID == challengeID {
			out = append(out, *tc)
		}
	}
	return out, nil
}

func (f *fakeChallengeRepo) IncrementAttempted(ctx context.Context, id string) error {
	if ch, ok := f.challenges[id]; ok {
		ch.AttemptedBy++
		f.attempted++
	}
	return nil
}

func (f *fakeChallengeRepo) IncrementAttemptedAndSolved(ctx context.Context, tx *sql.Tx, id string) error {
	if ch, ok := f.challenges[id]; ok {
		ch.AttemptedBy++
		ch.SolvedBy++
		f.attempted++
		f.solved++
	}
	return nil
}

func (f *fakeChallengeRepo) ExpireBefore(ctx context.Context, day time.Time) (int64, error) {
	var n int64
	for _, ch := range f.challenges {
		if ch.SolveDate.Format("2006-01-02") < day.Format("2006-01-02") && !ch.Expired {
			ch.Expired = true
			n++
		}
	}
	return n, nil
}

type fakeForumRepo struct {
	posts    map[string]*model.ForumPost
	comments map[string][]model.ForumComment
	reports  map[string]map[string]bool // postID -> reporterID set

	deleted []string
}

func newFakeForumRepo(posts ...*model.ForumPost) *fakeForumRepo {
	f := &fakeForumRepo{
		posts:    make(map[string]*model.ForumPost),
		comments: make(map[string][]model.ForumComment),
		reports:  make(map[string]map[string]bool),
	}
	for _, p := range posts {
		f.posts[p.ID] = p
	}
	return f
}

func (f *fakeForumRepo) CreatePost(ctx context.Context, post *model.ForumPost) error {
	f.posts[post.ID] = post
	return nil
}

func (f *fakeForumRepo) FindPostByID(ctx context.Context, id string) (*model.ForumPost, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	cp.CommentCount = len(f.comments[id])
	return &cp, nil
}

func (f *fakeForumRepo) ListPosts(ctx context.Context, limit, offset int, includeHidden bool) ([]model.ForumPost, int, error) {
	out := []model.ForumPost{}
	for _, p := range f.posts {
		if p.Hidden && !includeHidden {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeForumRepo) DeletePost(ctx context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.posts, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeForumRepo) SetPostHidden(ctx context.Context, tx *sql.Tx, id string, hidden bool) error {
	p, ok := f.posts[id]
	if !ok {
		return common.ErrNotFound
	}
	p.Hidden = hidden
	return nil
}

func (f *fakeForumRepo) CreateComment(ctx context.Context, comment *model.ForumComment) error {
	f.comments[comment.PostID] = append(f.comments[comment.PostID], *comment)
	return nil
}

func (f *fakeForumRepo) ListCommentsByPostID(ctx context.Context, postID string) ([]model.ForumComment, error) {
	return f.comments[postID], nil
}

func (f *fakeForumRepo) AddReport(ctx context.Context, tx *sql.Tx, postID, reporterID string) (int, error) {
	p, ok := f.posts[postID]
	if !ok {
		return 0, common.ErrNotFound
	}
	set := f.reports[postID]
	if set == nil {
		set = make(map[string]bool)
		f.reports[postID] = set
	}
	if set[reporterID] {
		return 0, common.ErrConflict
	}
	set[reporterID] = true
	p.ReportCount = len(set)
	return p.ReportCount, nil
}

func (f *fakeForumRepo) ClearReports(ctx context.Context, tx *sql.Tx, postID string) error {
	delete(f.reports, postID)
	if p, ok := f.posts[postID]; ok {
		p.ReportCount = 0
	}
	return nil
}

type fakeLeaderboardCache struct {
	invalidations int
}

func (f *fakeLeaderboardCache) Invalidate(ctx context.Context) {
	f.invalidations++
}
