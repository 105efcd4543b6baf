package services

import (
	"context"
	"sort"
	"time"

	"github.com/cyberquest/apiserver/internal/store"
	"github.com/cyberquest/apiserver/types"
)

// In-memory repositories for exercising the services without a
// database.

type fakeUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]types.User), nextID: 1}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = f.nextID
	f.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := f.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	for _, existing := range f.users {
		if existing.ID != user.ID && existing.Username == user.Username {
			return types.User{}, store.ErrConflict
		}
	}
	user.UpdatedAt = time.Now()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]types.User, error) {
	ids := make([]int, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	users := make([]types.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, f.users[id])
	}
	return users, nil
}

func (f *fakeUserRepo) TopByHighScore(_ context.Context, limit int) ([]types.LeaderboardEntry, error) {
	users, _ := f.List(context.Background())
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].HighScore != users[j].HighScore {
			return users[i].HighScore > users[j].HighScore
		}
		return users[i].ID < users[j].ID
	})
	if len(users) > limit {
		users = users[:limit]
	}
	entries := make([]types.LeaderboardEntry, 0, len(users))
	for _, user := range users {
		entries = append(entries, types.LeaderboardEntry{
			UserID:   user.ID,
			Username: user.Username,
			Score:    user.HighScore,
		})
	}
	return entries, nil
}

func (f *fakeUserRepo) RecordLoginFailure(_ context.Context, id int) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.FailedLogins++
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) RecordLoginSuccess(_ context.Context, id int, at time.Time, origin string) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.FailedLogins = 0
	user.LastLoginAt = at
	user.LastLoginIP = origin
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) SetBlocked(_ context.Context, id int, reason string, at time.Time) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.IsBlocked = true
	user.BlockedReason = reason
	user.BlockedAt = at
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) ClearBlocked(_ context.Context, id int) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.IsBlocked = false
	user.BlockedReason = ""
	user.BlockedAt = time.Time{}
	user.FailedLogins = 0
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) SetAdmin(_ context.Context, id int) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.IsAdmin = true
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) SetHighScore(_ context.Context, id int, highScore int) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.HighScore = highScore
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) Counts(_ context.Context) (int, int, error) {
	blocked := 0
	for _, user := range f.users {
		if user.IsBlocked {
			blocked++
		}
	}
	return len(f.users), blocked, nil
}

type fakeGameRepo struct {
	games []types.Game
}

func newFakeGameRepo(games ...types.Game) *fakeGameRepo {
	return &fakeGameRepo{games: games}
}

func (f *fakeGameRepo) Get(_ context.Context, id int) (types.Game, error) {
	for _, game := range f.games {
		if game.ID == id {
			return game, nil
		}
	}
	return types.Game{}, store.ErrNotFound
}

func (f *fakeGameRepo) List(_ context.Context) ([]types.Game, error) {
	return f.games, nil
}

func (f *fakeGameRepo) Count(_ context.Context) (int, error) {
	return len(f.games), nil
}

func (f *fakeGameRepo) Seed(_ context.Context, games []types.Game) error {
	f.games = append(f.games, games...)
	return nil
}

type fakeScoreRepo struct {
	scores map[[2]int]types.Score
	nextID int
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{scores: make(map[[2]int]types.Score), nextID: 1}
}

func (f *fakeScoreRepo) UpsertBest(_ context.Context, userID, gameID, score int) (types.Score, error) {
	key := [2]int{userID, gameID}
	now := time.Now()
	best, ok := f.scores[key]
	if !ok {
		best = types.Score{
			ID:        f.nextID,
			UserID:    userID,
			GameID:    gameID,
			Score:     score,
			CreatedAt: now,
			UpdatedAt: now,
		}
		f.nextID++
	} else if score > best.Score {
		best.Score = score
		best.UpdatedAt = now
	}
	f.scores[key] = best
	return best, nil
}

func (f *fakeScoreRepo) SumBest(_ context.Context, userID int) (int, error) {
	total := 0
	for _, best := range f.scores {
		if best.UserID == userID {
			total += best.Score
		}
	}
	return total, nil
}

func (f *fakeScoreRepo) BestByUser(_ context.Context, userID int) (map[int]int, error) {
	bests := make(map[int]int)
	for _, best := range f.scores {
		if best.UserID == userID {
			bests[best.GameID] = best.Score
		}
	}
	return bests, nil
}

func (f *fakeScoreRepo) sorted() []types.Score {
	all := make([]types.Score, 0, len(f.scores))
	for _, best := range f.scores {
		all = append(all, best)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].ID < all[j].ID
	})
	return all
}

func (f *fakeScoreRepo) TopByGame(_ context.Context, gameID, limit int) ([]types.LeaderboardEntry, error) {
	entries := make([]types.LeaderboardEntry, 0, limit)
	for _, best := range f.sorted() {
		if best.GameID != gameID {
			continue
		}
		entries = append(entries, types.LeaderboardEntry{UserID: best.UserID, Score: best.Score})
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

func (f *fakeScoreRepo) TopAcrossLedger(_ context.Context, limit int) ([]store.ReportRow, error) {
	rows := make([]store.ReportRow, 0, limit)
	for _, best := range f.sorted() {
		rows = append(rows, store.ReportRow{
			UserID: best.UserID,
			GameID: best.GameID,
			Score:  best.Score,
		})
		if len(rows) == limit {
			break
		}
	}
	return rows, nil
}

func (f *fakeScoreRepo) Counts(_ context.Context) (int, int, error) {
	users := make(map[int]bool)
	for _, best := range f.scores {
		users[best.UserID] = true
	}
	return len(f.scores), len(users), nil
}

type fakeFeedbackRepo struct {
	entries []types.Feedback
	nextID  int
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{nextID: 1}
}

func (f *fakeFeedbackRepo) Create(_ context.Context, fb types.Feedback) (types.Feedback, error) {
	fb.ID = f.nextID
	f.nextID++
	fb.CreatedAt = time.Now()
	f.entries = append(f.entries, fb)
	return fb, nil
}

func (f *fakeFeedbackRepo) ListByUserTopic(_ context.Context, userID, topicID int) ([]types.Feedback, error) {
	var out []types.Feedback
	for i := len(f.entries) - 1; i >= 0; i-- {
		fb := f.entries[i]
		if fb.UserID == userID && fb.TopicID == topicID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (f *fakeFeedbackRepo) ListAll(_ context.Context) ([]types.Feedback, error) {
	out := make([]types.Feedback, 0, len(f.entries))
	for i := len(f.entries) - 1; i >= 0; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func (f *fakeFeedbackRepo) Resolve(_ context.Context, id int) error {
	for i, fb := range f.entries {
		if fb.ID == id {
			f.entries[i].IsResolved = true
			return nil
		}
	}
	return store.ErrNotFound
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	channels []string
	payloads []any
}

func (p *recordingPublisher) PublishJSON(_ context.Context, channel string, payload any) error {
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return nil
}
