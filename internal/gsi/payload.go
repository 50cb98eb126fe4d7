package gsi

// Payload is the raw body the Dota 2 client POSTs to its configured GSI
// endpoint. Every block except auth and provider is optional: the client
// sends only the sections listed in its .cfg, and menu-screen heartbeats
// carry no map/player/hero data at all. Absent blocks decode to nil.
type Payload struct {
	Auth      *RawAuth               `json:"auth"`
	Provider  *RawProvider           `json:"provider"`
	Map       *RawMap                `json:"map"`
	Player    *RawPlayer             `json:"player"`
	Hero      *RawHero               `json:"hero"`
	Abilities map[string]*RawAbility `json:"abilities"`
	Items     map[string]*RawItem    `json:"items"`
	Draft     *RawDraft              `json:"draft"`
}

type RawAuth struct {
	Token string `json:"token"`
}

type RawProvider struct {
	Name      string `json:"name"`
	AppID     int    `json:"appid"`
	Version   int    `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

type RawMap struct {
	Name                 string `json:"name"`
	MatchID              string `json:"matchid"`
	GameTime             int    `json:"game_time"`
	ClockTime            int    `json:"clock_time"`
	Daytime              bool   `json:"daytime"`
	NightstalkerNight    bool   `json:"nightstalker_night"`
	GameState            string `json:"game_state"`
	Paused               bool   `json:"paused"`
	WinTeam              string `json:"win_team"`
	CustomGameName       string `json:"customgamename"`
	WardPurchaseCooldown int    `json:"ward_purchase_cooldown"`
}

type RawPlayer struct {
	SteamID        string `json:"steamid"`
	Name           string `json:"name"`
	Activity       string `json:"activity"`
	Kills          int    `json:"kills"`
	Deaths         int    `json:"deaths"`
	Assists        int    `json:"assists"`
	LastHits       int    `json:"last_hits"`
	Denies         int    `json:"denies"`
	KillStreak     int    `json:"kill_streak"`
	TeamName       string `json:"team_name"`
	Gold           int    `json:"gold"`
	GoldReliable   int    `json:"gold_reliable"`
	GoldUnreliable int    `json:"gold_unreliable"`
	GPM            int    `json:"gpm"`
	XPM            int    `json:"xpm"`
}

type RawHero struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Level         int    `json:"level"`
	Alive         bool   `json:"alive"`
	RespawnSecs   int    `json:"respawn_seconds"`
	BuybackCost   int    `json:"buyback_cost"`
	BuybackCD     int    `json:"buyback_cooldown"`
	Health        int    `json:"health"`
	MaxHealth     int    `json:"max_health"`
	HealthPercent int    `json:"health_percent"`
	Mana          int    `json:"mana"`
	MaxMana       int    `json:"max_mana"`
	ManaPercent   int    `json:"mana_percent"`
	Silenced      bool   `json:"silenced"`
	Stunned       bool   `json:"stunned"`
	Disarmed      bool   `json:"disarmed"`
	MagicImmune   bool   `json:"magicimmune"`
	Hexed         bool   `json:"hexed"`
	Muted         bool   `json:"muted"`
	Break         bool   `json:"break"`
	Smoked        bool   `json:"smoked"`
	HasDebuff     bool   `json:"has_debuff"`
	Talent1       bool   `json:"talent_1"`
	Talent2       bool   `json:"talent_2"`
	Talent3       bool   `json:"talent_3"`
	Talent4       bool   `json:"talent_4"`
	Talent5       bool   `json:"talent_5"`
	Talent6       bool   `json:"talent_6"`
	Talent7       bool   `json:"talent_7"`
	Talent8       bool   `json:"talent_8"`
}

type RawAbility struct {
	Name          string `json:"name"`
	Level         int    `json:"level"`
	CanCast       bool   `json:"can_cast"`
	Passive       bool   `json:"passive"`
	AbilityActive bool   `json:"ability_active"`
	Cooldown      int    `json:"cooldown"`
	Ultimate      bool   `json:"ultimate"`
	Charges       int    `json:"charges"`
	MaxCharges    int    `json:"max_charges"`
}

type RawItem struct {
	Name      string `json:"name"`
	Purchaser int    `json:"purchaser"`
	ItemLevel int    `json:"item_level"`
	CanCast   bool   `json:"can_cast"`
	Cooldown  int    `json:"cooldown"`
	Passive   bool   `json:"passive"`
	Charges   int    `json:"charges"`
}

// RawDraft mirrors the draft section sent during pick/ban. team2 is the
// Radiant block, team3 the Dire block; there is no self-describing side
// field in the upstream protocol, the mapping is by convention.
type RawDraft struct {
	ActiveTeam        int           `json:"activeteam"`
	Pick              bool          `json:"pick"`
	ActiveTeamRemains int           `json:"activeteam_time_remaining"`
	RadiantBonusTime  int           `json:"radiant_bonus_time"`
	DireBonusTime     int           `json:"dire_bonus_time"`
	Team2             *RawDraftTeam `json:"team2"`
	Team3             *RawDraftTeam `json:"team3"`
}

type RawDraftTeam struct {
	Pick0ID int `json:"pick0_id"`
	Pick1ID int `json:"pick1_id"`
	Pick2ID int `json:"pick2_id"`
	Pick3ID int `json:"pick3_id"`
	Pick4ID int `json:"pick4_id"`
}

func (t *RawDraftTeam) pickIDs() []int {
	if t == nil {
		return nil
	}
	ids := make([]int, 0, 5)
	for _, id := range [5]int{t.Pick0ID, t.Pick1ID, t.Pick2ID, t.Pick3ID, t.Pick4ID} {
		if id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
