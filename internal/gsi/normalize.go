package gsi

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnauthorized = errors.New("unauthorized payload")
var ErrInvalidPayload = errors.New("invalid payload")

// DotaAppID is the only appid accepted from the provider block.
const DotaAppID = 570

const (
	heroNamePrefix = "npc_dota_hero_"
	itemNamePrefix = "item_"
	emptySlotName  = "empty"

	teamRadiant = "radiant"
	teamDire    = "dire"
)

var abilitySlots = [6]string{"ability0", "ability1", "ability2", "ability3", "ability4", "ability5"}

var itemSlotGroups = []struct {
	location string
	keys     []string
}{
	{LocationInventory, []string{"slot0", "slot1", "slot2", "slot3", "slot4", "slot5"}},
	{LocationStash, []string{"stash0", "stash1", "stash2", "stash3", "stash4", "stash5"}},
	{LocationTeleport, []string{"teleport0"}},
	{LocationNeutral, []string{"neutral0"}},
}

// Normalize validates a raw GSI payload and converts it into a canonical
// Snapshot. An empty expectedToken disables the token check entirely. The
// transform is pure: a rejected payload leaves no trace anywhere.
func Normalize(p *Payload, expectedToken string) (*Snapshot, error) {
	if p == nil || p.Auth == nil {
		return nil, fmt.Errorf("%w: missing auth block", ErrUnauthorized)
	}
	if expectedToken != "" && p.Auth.Token != expectedToken {
		return nil, fmt.Errorf("%w: token mismatch", ErrUnauthorized)
	}
	if p.Provider == nil {
		return nil, fmt.Errorf("%w: missing provider block", ErrInvalidPayload)
	}
	if p.Provider.AppID != DotaAppID {
		return nil, fmt.Errorf("%w: unexpected appid %d", ErrInvalidPayload, p.Provider.AppID)
	}

	s := &Snapshot{
		Timestamp: p.Provider.Timestamp * 1000,
		Player:    normalizePlayer(p.Player),
		Map:       normalizeMap(p.Map),
		Hero:      normalizeHero(p.Hero),
		Abilities: normalizeAbilities(p.Abilities),
		Items:     normalizeItems(p.Items),
	}
	if p.Map != nil && p.Map.MatchID != "" {
		id := p.Map.MatchID
		s.MatchID = &id
	}
	if p.Draft != nil && p.Player != nil && p.Player.TeamName != "" {
		s.DraftHints = normalizeDraft(p.Draft, p.Player.TeamName)
	}
	return s, nil
}

// IsHeartbeat reports whether a payload is a menu-screen heartbeat, i.e. it
// carries no match identifier.
func IsHeartbeat(p *Payload) bool {
	return p == nil || p.Map == nil || p.Map.MatchID == ""
}

func normalizePlayer(p *RawPlayer) *PlayerState {
	if p == nil {
		return nil
	}
	return &PlayerState{
		SteamID:  p.SteamID,
		Name:     p.Name,
		Team:     p.TeamName,
		Kills:    p.Kills,
		Deaths:   p.Deaths,
		Assists:  p.Assists,
		LastHits: p.LastHits,
		Denies:   p.Denies,
		Gold:     p.Gold,
		GPM:      p.GPM,
		XPM:      p.XPM,
	}
}

func normalizeMap(m *RawMap) *MapState {
	if m == nil {
		return nil
	}
	return &MapState{
		GameTime:  m.GameTime,
		ClockTime: m.ClockTime,
		GameState: m.GameState,
		Daytime:   m.Daytime,
		Paused:    m.Paused,
		WinTeam:   m.WinTeam,
	}
}

func normalizeHero(h *RawHero) *HeroState {
	if h == nil {
		return nil
	}
	return &HeroState{
		ID:            h.ID,
		Name:          strings.TrimPrefix(h.Name, heroNamePrefix),
		Level:         h.Level,
		Alive:         h.Alive,
		RespawnSecs:   h.RespawnSecs,
		Health:        h.Health,
		MaxHealth:     h.MaxHealth,
		HealthPercent: h.HealthPercent,
		Mana:          h.Mana,
		MaxMana:       h.MaxMana,
		ManaPercent:   h.ManaPercent,
		Silenced:      h.Silenced,
		Stunned:       h.Stunned,
		Disarmed:      h.Disarmed,
		MagicImmune:   h.MagicImmune,
		Hexed:         h.Hexed,
		Muted:         h.Muted,
		Break:         h.Break,
		Smoked:        h.Smoked,
		HasDebuff:     h.HasDebuff,
		Talents: [8]bool{
			h.Talent1, h.Talent2, h.Talent3, h.Talent4,
			h.Talent5, h.Talent6, h.Talent7, h.Talent8,
		},
	}
}

func normalizeAbilities(raw map[string]*RawAbility) []Ability {
	out := make([]Ability, 0, len(abilitySlots))
	for i, key := range abilitySlots {
		a, ok := raw[key]
		if !ok || a == nil || a.Name == emptySlotName {
			continue
		}
		out = append(out, Ability{
			Slot:       i,
			Name:       a.Name,
			Level:      a.Level,
			CanCast:    a.CanCast,
			Passive:    a.Passive,
			Active:     a.AbilityActive,
			Ultimate:   a.Ultimate,
			Cooldown:   a.Cooldown,
			Charges:    a.Charges,
			MaxCharges: a.MaxCharges,
		})
	}
	return out
}

func normalizeItems(raw map[string]*RawItem) []Item {
	out := make([]Item, 0, 8)
	for _, group := range itemSlotGroups {
		for i, key := range group.keys {
			it, ok := raw[key]
			if !ok || it == nil || it.Name == emptySlotName {
				continue
			}
			name := strings.TrimPrefix(it.Name, itemNamePrefix)
			out = append(out, Item{
				Slot:        i,
				Location:    group.location,
				Name:        name,
				DisplayName: displayName(name),
				CanCast:     it.CanCast,
				Cooldown:    it.Cooldown,
				Passive:     it.Passive,
				Charges:     it.Charges,
			})
		}
	}
	return out
}

// displayName turns "blink_dagger" into "Blink Dagger".
func displayName(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Placeholder hero-id sets for the needs-X heuristics. These are a handful of
// well-known offenders, not real tag data; the counting threshold below is a
// stub until hero tags come from the catalog service.
var (
	heavyMagicHeroes = map[int]bool{22: true, 25: true, 26: true, 31: true, 36: true, 43: true, 45: true, 64: true, 75: true, 101: true}
	hardDebuffHeroes = map[int]bool{17: true, 26: true, 31: true, 50: true, 58: true, 62: true, 75: true, 86: true}
	invisHeroes      = map[int]bool{32: true, 38: true, 44: true, 84: true, 88: true, 93: true, 106: true}
)

const needsFlagThreshold = 2

func normalizeDraft(d *RawDraft, teamName string) *DraftHints {
	radiant := d.Team2.pickIDs()
	dire := d.Team3.pickIDs()

	var allies, enemies []int
	switch strings.ToLower(teamName) {
	case teamRadiant:
		allies, enemies = radiant, dire
	case teamDire:
		allies, enemies = dire, radiant
	default:
		return nil
	}
	if allies == nil {
		allies = []int{}
	}
	if enemies == nil {
		enemies = []int{}
	}

	return &DraftHints{
		AllyHeroIDs:    allies,
		EnemyHeroIDs:   enemies,
		NeedsImmunity:  countIn(enemies, heavyMagicHeroes) >= needsFlagThreshold,
		NeedsDispel:    countIn(enemies, hardDebuffHeroes) >= needsFlagThreshold,
		NeedsDetection: countIn(enemies, invisHeroes) >= 1,
	}
}

func countIn(ids []int, set map[int]bool) int {
	n := 0
	for _, id := range ids {
		if set[id] {
			n++
		}
	}
	return n
}
