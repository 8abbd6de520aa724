package lobbycard

import (
	"bytes"
	"html"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func testLobby() *models.Lobby {
	return &models.Lobby{
		ID:          42,
		Game:        models.LobbyGame{ID: 1, Name: "Valorant", Icon: "https://cdn.example/val.png"},
		Owner:       models.LobbyOwner{Username: "sova"},
		Players:     []models.Player{{ID: "p1", Username: "sova"}},
		Mode:        "Competitive",
		Region:      "EU",
		CurrentSize: 1,
		MaxSize:     5,
		MinRank:     "Gold",
		MaxRank:     "Diamond",
		Type:        models.LobbyPublic,
		Status:      models.StatusWaiting,
		CreatedAt:   now.Add(-5 * time.Minute),
	}
}

func players(n int) []models.Player {
	out := make([]models.Player, n)
	for i := range out {
		out[i] = models.Player{ID: string(rune('a' + i)), Username: "player" + string(rune('A'+i))}
	}
	return out
}

// recorder counts intents raised by a card.
type recorder struct {
	joins, edits, deletes []int64
}

func (r *recorder) OnJoin(id int64)   { r.joins = append(r.joins, id) }
func (r *recorder) OnEdit(id int64)   { r.edits = append(r.edits, id) }
func (r *recorder) OnDelete(id int64) { r.deletes = append(r.deletes, id) }

func TestStatusColorFor(t *testing.T) {
	cases := map[models.LobbyStatus]StatusColor{
		models.StatusWaiting: ColorGreen,
		models.StatusInGame:  ColorYellow,
		models.StatusFull:    ColorRed,
		"closed":             ColorGray,
		"":                   ColorGray,
	}
	for status, want := range cases {
		assert.Equal(t, want, StatusColorFor(status), "status %q", status)
	}
}

func TestIsJoinable(t *testing.T) {
	l := testLobby()
	assert.True(t, l.IsJoinable())

	l.CurrentSize = l.MaxSize
	assert.False(t, l.IsJoinable(), "a lobby at capacity is not joinable")

	l.CurrentSize = 1
	l.Status = models.StatusInGame
	assert.False(t, l.IsJoinable())

	l.Status = models.StatusFull
	assert.False(t, l.IsJoinable())
}

func TestFormatTimeAgo(t *testing.T) {
	cases := []struct {
		diff time.Duration
		want string
	}{
		{0, "Just now"},
		{59 * time.Second, "Just now"},
		{-10 * time.Minute, "Just now"},
		{5 * time.Minute, "5m ago"},
		{59 * time.Minute, "59m ago"},
		{125 * time.Minute, "2h ago"},
		{1439 * time.Minute, "23h ago"},
		{3000 * time.Minute, "2d ago"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatTimeAgo(now.Add(-tc.diff), now), "diff %v", tc.diff)
	}
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, "V", Glyph("Valorant"))
	assert.Equal(t, "Ö", Glyph("Ödland"))
	assert.Equal(t, "?", Glyph(""))
}

func TestRenderRosterOverflow(t *testing.T) {
	l := testLobby()
	l.Players = players(6)
	l.CurrentSize = 6
	l.MaxSize = 8

	v := New(l, nil).Render(now)
	require.Len(t, v.Roster.Tiles, 4)
	assert.Equal(t, "+2 more players", v.Roster.Overflow)
	assert.False(t, v.Roster.Empty)
	assert.Equal(t, "6/8", v.Roster.Count)
	assert.Equal(t, "playerA", v.Roster.Tiles[0].Username)
	assert.Equal(t, "p", v.Roster.Tiles[0].Initial)
}

func TestRenderRosterExactlyFour(t *testing.T) {
	l := testLobby()
	l.Players = players(4)
	v := New(l, nil).Render(now)
	assert.Len(t, v.Roster.Tiles, 4)
	assert.Empty(t, v.Roster.Overflow)
}

func TestRenderRosterEmpty(t *testing.T) {
	for _, ps := range [][]models.Player{nil, {}} {
		l := testLobby()
		l.Players = ps
		l.CurrentSize = 0
		v := New(l, nil).Render(now)
		assert.True(t, v.Roster.Empty)
		assert.Equal(t, EmptyRosterMessage, v.Roster.Message)
		assert.Empty(t, v.Roster.Tiles)
	}
}

func TestRenderTags(t *testing.T) {
	l := testLobby()
	l.Tags = []string{"chill", "comms", "eu", "18+", "ranked"}
	v := New(l, nil).Render(now)
	assert.Equal(t, []string{"chill", "comms", "eu"}, v.Tags)
	assert.Equal(t, "+2", v.TagOverflow)

	l.Tags = []string{"chill", "comms", "eu"}
	v = New(l, nil).Render(now)
	assert.Equal(t, []string{"chill", "comms", "eu"}, v.Tags)
	assert.Empty(t, v.TagOverflow)
}

func TestRenderInfo(t *testing.T) {
	l := testLobby()
	v := New(l, nil).Render(now)
	assert.Equal(t, "Gold - Diamond", v.RankRange)
	assert.Equal(t, "Competitive • EU", v.ModeRegion)
	assert.False(t, v.VoiceChat)
	assert.Equal(t, "5m ago", v.Age)
	assert.Equal(t, ColorGreen, v.StatusColor)
	assert.Equal(t, "s", v.Owner.Initial)

	l.IsMicRequired = true
	l.Note = "no tilt please"
	v = New(l, nil).Render(now)
	assert.True(t, v.VoiceChat)
	assert.Equal(t, "no tilt please", v.Note)
}

func TestRenderAction(t *testing.T) {
	l := testLobby()
	assert.Equal(t, ActionView{Label: LabelJoin, Enabled: true}, New(l, nil).Render(now).Action)

	l.Status = models.StatusFull
	assert.Equal(t, ActionView{Label: LabelFull}, New(l, nil).Render(now).Action)

	l.Status = models.StatusInGame
	assert.Equal(t, ActionView{Label: LabelInGame}, New(l, nil).Render(now).Action)

	l.Status = models.StatusWaiting
	l.CurrentSize = l.MaxSize
	assert.Equal(t, ActionView{Label: LabelInGame}, New(l, nil).Render(now).Action)
}

func TestJoinRaisesOnlyOnJoin(t *testing.T) {
	rec := &recorder{}
	c := New(testLobby(), rec)

	require.NoError(t, c.Join())
	assert.Equal(t, []int64{42}, rec.joins)
	assert.Empty(t, rec.edits)
	assert.Empty(t, rec.deletes)
}

func TestJoinDisabledNeverRaises(t *testing.T) {
	l := testLobby()
	l.Status = models.StatusFull
	rec := &recorder{}
	c := New(l, rec)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, c.Join(), ErrNotJoinable)
	}
	assert.Empty(t, rec.joins)
	assert.False(t, c.Render(now).Action.Enabled)
}

func TestEditDeleteIntents(t *testing.T) {
	rec := &recorder{}
	c := New(testLobby(), rec)
	c.Edit()
	c.Delete()
	assert.Equal(t, []int64{42}, rec.edits)
	assert.Equal(t, []int64{42}, rec.deletes)
	assert.Empty(t, rec.joins)
}

func TestNilIntentsAreIgnored(t *testing.T) {
	c := New(testLobby(), nil)
	assert.NoError(t, c.Join())
	c.Edit()
	c.Delete()
}

func TestIconFallbackLatches(t *testing.T) {
	l := testLobby()
	c := New(l, nil)
	v := c.Render(now)
	assert.False(t, v.Game.ShowGlyph)
	assert.Equal(t, l.Game.Icon, v.Game.IconURL)

	c.IconFailed()
	for i := 0; i < 3; i++ {
		c.SetLobby(l)
		v = c.Render(now)
		assert.True(t, v.Game.ShowGlyph)
		assert.Equal(t, "V", v.Game.Glyph)
		assert.Empty(t, v.Game.IconURL)
	}
}

func TestIconFallbackResetsForNewIcon(t *testing.T) {
	l := testLobby()
	c := New(l, nil)
	c.IconFailed()

	other := testLobby()
	other.Game.Icon = "https://cdn.example/val-v2.png"
	c.SetLobby(other)
	v := c.Render(now)
	assert.False(t, v.Game.ShowGlyph)
	assert.Equal(t, other.Game.Icon, v.Game.IconURL)
}

func TestCardDoesNotAliasLobby(t *testing.T) {
	l := testLobby()
	c := New(l, nil)
	l.Players[0].Username = "mutated"
	l.Status = models.StatusFull
	v := c.Render(now)
	assert.Equal(t, "sova", v.Roster.Tiles[0].Username)
	assert.True(t, v.Action.Enabled)
}

func TestWriteHTML(t *testing.T) {
	l := testLobby()
	l.Players = players(6)
	l.Tags = []string{"a", "b", "c", "d"}
	l.IsMicRequired = true
	l.Note = "<script>alert(1)</script>"

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, []View{New(l, nil).Render(now)}))
	out := buf.String()
	// text as a browser shows it; html/template escapes "+" as &#43;
	text := html.UnescapeString(out)

	assert.Contains(t, out, `data-lobby-id="42"`)
	assert.Contains(t, text, "+2 more players")
	assert.Contains(t, out, "Voice Chat")
	assert.Contains(t, text, `<span class="lobby-card__tag-overflow">+1</span>`)
	assert.Contains(t, out, `<p class="lobby-card__note" data-clamp="2"`)
	assert.Contains(t, out, "-webkit-line-clamp:2")
	assert.Contains(t, out, `action="/lobbies/42/card/join"`)
	assert.Equal(t, 4, strings.Count(out, `class="lobby-card__player"`))
	assert.NotContains(t, out, "<script>alert(1)</script>")
}

func TestWriteCardHTMLDisabled(t *testing.T) {
	l := testLobby()
	l.Status = models.StatusFull
	l.Players = nil
	c := New(l, nil)
	c.IconFailed()

	var buf bytes.Buffer
	require.NoError(t, WriteCardHTML(&buf, c.Render(now)))
	out := buf.String()

	assert.Contains(t, out, `<button type="button" disabled>Full</button>`)
	assert.Contains(t, out, EmptyRosterMessage)
	assert.Contains(t, out, `<span class="lobby-card__glyph">V</span>`)
	assert.NotContains(t, out, "<img src=")
	assert.NotContains(t, out, "Voice Chat")
}

func TestMissingIconShowsGlyph(t *testing.T) {
	l := testLobby()
	l.Game.Icon = ""
	v := New(l, nil).Render(now)
	assert.True(t, v.Game.ShowGlyph)
	assert.Equal(t, "V", v.Game.Glyph)
}
