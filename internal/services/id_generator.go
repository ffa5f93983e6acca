package services

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
)

// MinProjectSequence is the first numeric prefix handed to projects.
const MinProjectSequence int64 = 700

type userIDSource interface {
	MaxHumanID(ctx context.Context) (int64, error)
}

type projectIDSource interface {
	MaxHumanIDPrefix(ctx context.Context) (int64, error)
}

// IDGenerator hands out human-facing identifiers. It takes no locks: two
// concurrent callers may read the same maximum, so uniqueness is best effort
// and enforced in the end by the unique constraints in the database.
type IDGenerator struct {
	users    userIDSource
	projects projectIDSource
	log      *slog.Logger
	now      func() time.Time
	intN     func(n int) int
}

func NewIDGenerator(users userIDSource, projects projectIDSource, log *slog.Logger) *IDGenerator {
	return &IDGenerator{
		users:    users,
		projects: projects,
		log:      log,
		now:      time.Now,
		intN:     rand.IntN,
	}
}

// NextUserID returns max(70000, current max + 1). When the lookup fails it
// falls back to a time-derived id.
func (g *IDGenerator) NextUserID(ctx context.Context) int64 {
	max, err := g.users.MaxHumanID(ctx)
	if err != nil {
		g.log.WarnContext(ctx, "user id lookup failed, using fallback", "error", err)
		return g.FallbackUserID()
	}
	if max+1 < models.MinUserHumanID {
		return models.MinUserHumanID
	}
	return max + 1
}

// FallbackUserID is 70000 + (unixMillis mod 10^6)*1000 + rand[0,1000).
func (g *IDGenerator) FallbackUserID() int64 {
	millis := g.now().UnixMilli()
	return models.MinUserHumanID + (millis%1_000_000)*1000 + int64(g.intN(1000))
}

// NextProjectID returns "<N>-<LL>" with N = max(700, current max prefix + 1)
// and two random uppercase letters. When the lookup fails N is the current
// unix time in milliseconds.
func (g *IDGenerator) NextProjectID(ctx context.Context) string {
	max, err := g.projects.MaxHumanIDPrefix(ctx)
	if err != nil {
		g.log.WarnContext(ctx, "project id lookup failed, using fallback", "error", err)
		return g.FallbackProjectID()
	}
	seq := max + 1
	if seq < MinProjectSequence {
		seq = MinProjectSequence
	}
	return strconv.FormatInt(seq, 10) + "-" + g.letters()
}

func (g *IDGenerator) FallbackProjectID() string {
	return strconv.FormatInt(g.now().UnixMilli(), 10) + "-" + g.letters()
}

func (g *IDGenerator) letters() string {
	return string([]byte{byte('A' + g.intN(26)), byte('A' + g.intN(26))})
}
