package game

// Theme is a curated adventure setting players can start from. Free-form
// themes are still accepted; the catalog only powers discovery.
type Theme struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Hook        string `json:"hook,omitempty"` // 给玩家的一句开场引导
}

// ThemeStore exposes theme retrieval for HTTP handlers.
type ThemeStore interface {
	List() []Theme
	FindByID(id string) (Theme, bool)
}

// MemoryThemeStore implements ThemeStore with an in-memory slice.
type MemoryThemeStore struct {
	items []Theme
}

// NewMemoryThemeStore returns a store preloaded with the supplied themes.
func NewMemoryThemeStore(items []Theme) *MemoryThemeStore {
	return &MemoryThemeStore{items: append([]Theme(nil), items...)}
}

// List returns the preset theme list.
func (s *MemoryThemeStore) List() []Theme {
	return append([]Theme(nil), s.items...)
}

// FindByID looks up a theme by identifier.
func (s *MemoryThemeStore) FindByID(id string) (Theme, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Theme{}, false
}

// SeedThemes provides the default adventure settings.
func SeedThemes() []Theme {
	return []Theme{
		{
			ID:          "fantasy",
			Name:        "奇幻世界",
			Description: "剑与魔法的经典大陆，遗迹、龙与古老的预言。",
			Hook:        "你在一座边境小镇的酒馆里醒来，桌上放着一张泛黄的藏宝图。",
		},
		{
			ID:          "cyberpunk",
			Name:        "赛博朋克",
			Description: "霓虹雨夜的巨型都市，义体、黑客与无处不在的公司阴影。",
			Hook:        "通讯植入体在凌晨三点震动，一条匿名委托悄然出现。",
		},
		{
			ID:          "deep-sea",
			Name:        "深海遗迹",
			Description: "被遗忘的海底城市，潜水钟、发光生物与失落文明的低语。",
			Hook:        "声呐在海沟底部捕捉到了规律的金属敲击声。",
		},
		{
			ID:          "wasteland",
			Name:        "废土余生",
			Description: "文明崩塌后的荒原，辐射尘、拾荒者与地下避难所。",
			Hook:        "水壶见底的第三天，你在沙丘后发现了一扇半埋的铁门。",
		},
	}
}
