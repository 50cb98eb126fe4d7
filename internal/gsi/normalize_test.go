package gsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullPayload() *Payload {
	return &Payload{
		Auth:     &RawAuth{Token: "secret"},
		Provider: &RawProvider{Name: "Dota 2", AppID: DotaAppID, Timestamp: 1696950000},
		Map: &RawMap{
			MatchID:   "7890123456",
			GameTime:  620,
			ClockTime: 580,
			GameState: "DOTA_GAMERULES_STATE_GAME_IN_PROGRESS",
			Daytime:   true,
		},
		Player: &RawPlayer{
			SteamID:  "76561198012345678",
			Name:     "mid or feed",
			TeamName: "radiant",
			Kills:    3,
			Gold:     2150,
			GPM:      412,
			XPM:      480,
		},
		Hero: &RawHero{
			ID:        14,
			Name:      "npc_dota_hero_pudge",
			Level:     11,
			Alive:     true,
			Health:    1450,
			MaxHealth: 1800,
		},
		Abilities: map[string]*RawAbility{
			"ability0": {Name: "pudge_meat_hook", Level: 4, CanCast: true, Cooldown: 0},
			"ability1": {Name: "pudge_rot", Level: 4, CanCast: true},
			"ability2": {Name: "empty"},
			"ability5": {Name: "pudge_dismember", Level: 2, Ultimate: true, Cooldown: 12},
		},
		Items: map[string]*RawItem{
			"slot0":     {Name: "item_blink", CanCast: true},
			"slot1":     {Name: "empty"},
			"stash0":    {Name: "item_gem"},
			"teleport0": {Name: "item_tpscroll", Charges: 2},
			"neutral0":  {Name: "item_trusty_shovel"},
		},
		Draft: &RawDraft{
			Team2: &RawDraftTeam{Pick0ID: 14, Pick1ID: 26, Pick2ID: 31},
			Team3: &RawDraftTeam{Pick0ID: 32, Pick1ID: 44, Pick2ID: 75, Pick3ID: 25},
		},
	}
}

func TestNormalize_AuthChecks(t *testing.T) {
	cases := []struct {
		name          string
		payload       func() *Payload
		expectedToken string
		wantErr       error
	}{
		{
			name:          "missing auth block",
			payload:       func() *Payload { p := fullPayload(); p.Auth = nil; return p },
			expectedToken: "",
			wantErr:       ErrUnauthorized,
		},
		{
			name:          "token mismatch",
			payload:       fullPayload,
			expectedToken: "other",
			wantErr:       ErrUnauthorized,
		},
		{
			name:          "exact token match",
			payload:       fullPayload,
			expectedToken: "secret",
		},
		{
			name:          "permissive mode accepts any token",
			payload:       fullPayload,
			expectedToken: "",
		},
		{
			name:          "permissive mode accepts empty token",
			payload:       func() *Payload { p := fullPayload(); p.Auth.Token = ""; return p },
			expectedToken: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.payload(), tc.expectedToken)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNormalize_ProviderChecks(t *testing.T) {
	p := fullPayload()
	p.Provider = nil
	_, err := Normalize(p, "")
	require.ErrorIs(t, err, ErrInvalidPayload)

	p = fullPayload()
	p.Provider.AppID = 730
	_, err = Normalize(p, "")
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestNormalize_Heartbeat(t *testing.T) {
	p := &Payload{
		Auth:     &RawAuth{Token: ""},
		Provider: &RawProvider{AppID: 570, Timestamp: 1696950000},
	}
	require.True(t, IsHeartbeat(p))

	snap, err := Normalize(p, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1696950000000), snap.Timestamp)
	assert.Nil(t, snap.MatchID)
	assert.Nil(t, snap.Player)
	assert.Nil(t, snap.Map)
	assert.Nil(t, snap.Hero)
	assert.Nil(t, snap.DraftHints)
	assert.NotNil(t, snap.Abilities)
	assert.Empty(t, snap.Abilities)
	assert.NotNil(t, snap.Items)
	assert.Empty(t, snap.Items)
}

func TestNormalize_FullPayload(t *testing.T) {
	snap, err := Normalize(fullPayload(), "secret")
	require.NoError(t, err)

	require.NotNil(t, snap.MatchID)
	assert.Equal(t, "7890123456", *snap.MatchID)
	assert.False(t, IsHeartbeat(fullPayload()))

	require.NotNil(t, snap.Player)
	assert.Equal(t, "76561198012345678", snap.Player.SteamID)
	assert.Equal(t, "radiant", snap.Player.Team)

	require.NotNil(t, snap.Hero)
	assert.Equal(t, "pudge", snap.Hero.Name)

	// Slots ability2 ("empty") and ability3/4 (absent) are filtered.
	require.Len(t, snap.Abilities, 3)
	assert.Equal(t, 0, snap.Abilities[0].Slot)
	assert.Equal(t, "pudge_meat_hook", snap.Abilities[0].Name)
	assert.Equal(t, 5, snap.Abilities[2].Slot)
	assert.True(t, snap.Abilities[2].Ultimate)

	require.Len(t, snap.Items, 4)
	assert.Equal(t, LocationInventory, snap.Items[0].Location)
	assert.Equal(t, "blink", snap.Items[0].Name)
	assert.Equal(t, "Blink", snap.Items[0].DisplayName)
	assert.Equal(t, LocationStash, snap.Items[1].Location)
	assert.Equal(t, LocationTeleport, snap.Items[2].Location)
	assert.Equal(t, LocationNeutral, snap.Items[3].Location)
	assert.Equal(t, "Trusty Shovel", snap.Items[3].DisplayName)
}

func TestNormalize_DraftHints(t *testing.T) {
	snap, err := Normalize(fullPayload(), "secret")
	require.NoError(t, err)

	require.NotNil(t, snap.DraftHints)
	assert.Equal(t, []int{14, 26, 31}, snap.DraftHints.AllyHeroIDs)
	assert.Equal(t, []int{32, 44, 75, 25}, snap.DraftHints.EnemyHeroIDs)
	// Enemy picks include two invis heroes and a couple of heavy magic ids;
	// the stub thresholds should trip detection and immunity.
	assert.True(t, snap.DraftHints.NeedsDetection)
	assert.True(t, snap.DraftHints.NeedsImmunity)
}

func TestNormalize_DraftHintsSides(t *testing.T) {
	p := fullPayload()
	p.Player.TeamName = "dire"
	snap, err := Normalize(p, "secret")
	require.NoError(t, err)
	require.NotNil(t, snap.DraftHints)
	assert.Equal(t, []int{32, 44, 75, 25}, snap.DraftHints.AllyHeroIDs)
	assert.Equal(t, []int{14, 26, 31}, snap.DraftHints.EnemyHeroIDs)
}

func TestNormalize_DraftHintsRequireTeam(t *testing.T) {
	p := fullPayload()
	p.Player.TeamName = ""
	snap, err := Normalize(p, "secret")
	require.NoError(t, err)
	assert.Nil(t, snap.DraftHints)

	p = fullPayload()
	p.Draft = nil
	snap, err = Normalize(p, "secret")
	require.NoError(t, err)
	assert.Nil(t, snap.DraftHints)
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"blink", "Blink"},
		{"blink_dagger", "Blink Dagger"},
		{"black_king_bar", "Black King Bar"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, displayName(tc.in))
	}
}

func TestNormalize_NamePrefixLeftAloneWhenAbsent(t *testing.T) {
	p := fullPayload()
	p.Hero.Name = "pudge"
	p.Items = map[string]*RawItem{"slot0": {Name: "blink"}}
	snap, err := Normalize(p, "secret")
	require.NoError(t, err)
	assert.Equal(t, "pudge", snap.Hero.Name)
	assert.Equal(t, "blink", snap.Items[0].Name)
}
