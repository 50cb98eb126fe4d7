package gsi

// Snapshot is the canonical, fully defaulted form of one GSI payload. It is
// what gets hashed for dedup and what goes out to subscribed clients, so its
// shape is part of the wire contract: sub-blocks are null only when the
// upstream block was entirely absent, list fields are always present (empty,
// never null).
type Snapshot struct {
	Timestamp  int64        `json:"t"`
	MatchID    *string      `json:"matchId"`
	Player     *PlayerState `json:"player"`
	Map        *MapState    `json:"map"`
	Hero       *HeroState   `json:"hero"`
	Abilities  []Ability    `json:"abilities"`
	Items      []Item       `json:"items"`
	DraftHints *DraftHints  `json:"draftHints"`
}

type PlayerState struct {
	SteamID  string `json:"steamId"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
	Assists  int    `json:"assists"`
	LastHits int    `json:"lastHits"`
	Denies   int    `json:"denies"`
	Gold     int    `json:"gold"`
	GPM      int    `json:"gpm"`
	XPM      int    `json:"xpm"`
}

type MapState struct {
	GameTime  int    `json:"gameTime"`
	ClockTime int    `json:"clockTime"`
	GameState string `json:"gameState"`
	Daytime   bool   `json:"daytime"`
	Paused    bool   `json:"paused"`
	WinTeam   string `json:"winTeam"`
}

type HeroState struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Level         int     `json:"level"`
	Alive         bool    `json:"alive"`
	RespawnSecs   int     `json:"respawnSeconds"`
	Health        int     `json:"health"`
	MaxHealth     int     `json:"maxHealth"`
	HealthPercent int     `json:"healthPercent"`
	Mana          int     `json:"mana"`
	MaxMana       int     `json:"maxMana"`
	ManaPercent   int     `json:"manaPercent"`
	Silenced      bool    `json:"silenced"`
	Stunned       bool    `json:"stunned"`
	Disarmed      bool    `json:"disarmed"`
	MagicImmune   bool    `json:"magicImmune"`
	Hexed         bool    `json:"hexed"`
	Muted         bool    `json:"muted"`
	Break         bool    `json:"break"`
	Smoked        bool    `json:"smoked"`
	HasDebuff     bool    `json:"hasDebuff"`
	Talents       [8]bool `json:"talents"`
}

type Ability struct {
	Slot       int    `json:"slot"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	CanCast    bool   `json:"canCast"`
	Passive    bool   `json:"passive"`
	Active     bool   `json:"active"`
	Ultimate   bool   `json:"ultimate"`
	Cooldown   int    `json:"cooldown"`
	Charges    int    `json:"charges"`
	MaxCharges int    `json:"maxCharges"`
}

// Item locations, matching the four slot groups of the items block.
const (
	LocationInventory = "inventory"
	LocationStash     = "stash"
	LocationTeleport  = "teleport"
	LocationNeutral   = "neutral"
)

type Item struct {
	Slot        int    `json:"slot"`
	Location    string `json:"location"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	CanCast     bool   `json:"canCast"`
	Cooldown    int    `json:"cooldown"`
	Passive     bool   `json:"passive"`
	Charges     int    `json:"charges"`
}

type DraftHints struct {
	AllyHeroIDs    []int `json:"allyHeroIds"`
	EnemyHeroIDs   []int `json:"enemyHeroIds"`
	NeedsImmunity  bool  `json:"needsImmunity"`
	NeedsDispel    bool  `json:"needsDispel"`
	NeedsDetection bool  `json:"needsDetection"`
}
