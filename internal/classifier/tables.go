package classifier

// Category names.
const (
	CategoryAutomation = "automation"
	CategoryRobotics   = "robotics"
	CategoryAI         = "ai"
	CategoryBlockchain = "blockchain"
	CategoryCloud      = "cloud"
	CategoryMobile     = "mobile"
	CategoryStartup    = "startup"
	CategorySecurity   = "security"
	CategoryGeneral    = "general"
)

// Channel keys.
const (
	ChannelITNews     = "it_news"
	ChannelAutomation = "automation"
	ChannelRobotics   = "robotics"
)

// CategoryRule is one entry of the ordered category table.
// When Refine is set and any of its terms also match, RefinedCategory wins.
type CategoryRule struct {
	Category        string
	Terms           []string
	Refine          []string
	RefinedCategory string
}

// Indicator is a group of terms that adjusts importance once when any term is present.
type Indicator struct {
	Name   string
	Weight int
	Terms  []string
}

// VocabularyTerm is a keyword tag. Display is used for hashtags; Match are
// the lower-case forms looked up in the text.
type VocabularyTerm struct {
	Display string
	Match   []string
}

// DefaultCategoryRules is checked in order; the first matching rule wins.
var DefaultCategoryRules = []CategoryRule{
	{
		Category:        CategoryRobotics,
		Terms:           []string{"робот", "robot", "автоматизац", "automation"},
		Refine:          []string{"промышл", "industrial", "manufacturing"},
		RefinedCategory: CategoryAutomation,
	},
	{
		Category: CategoryAI,
		Terms: []string{
			"ai", "ии", "искусственный интеллект", "artificial intelligence",
			"нейросет", "neural", "machine learning", "машинное обучение",
			"chatgpt", "gpt", "llm",
		},
	},
	{Category: CategoryBlockchain, Terms: []string{"blockchain", "блокчейн", "crypto", "крипто", "bitcoin", "ethereum"}},
	{Category: CategoryCloud, Terms: []string{"cloud", "облак", "aws", "azure", "kubernetes"}},
	{Category: CategoryMobile, Terms: []string{"mobile", "мобильн", "smartphone", "смартфон", "android", "ios"}},
	{Category: CategoryStartup, Terms: []string{"startup", "стартап", "venture", "венчур"}},
	{Category: CategorySecurity, Terms: []string{"cybersecurity", "кибер", "cyber", "vulnerabilit", "уязвим", "malware"}},
}

// BaselineImportance is the score before indicators are applied.
const BaselineImportance = 5

// DefaultIndicators adjust the baseline score.
var DefaultIndicators = []Indicator{
	{Name: "breakthrough", Weight: 4, Terms: []string{
		"breakthrough", "прорыв", "revolutionary", "революцион", "world's first", "впервые в мире", "first-ever",
	}},
	{Name: "major_announcement", Weight: 2, Terms: []string{
		"announce", "анонс", "unveil", "представил", "launch", "запуст",
	}},
	{Name: "financial", Weight: 3, Terms: []string{
		"million", "billion", "млн", "млрд", "миллион", "миллиард",
		"investment", "инвестиц", "funding", "raising", "raised", "acquisition", "поглощен", "ipo",
	}},
	{Name: "security_critical", Weight: 3, Terms: []string{
		"vulnerability", "уязвимост", "breach", "утечк", "ransomware", "zero-day", "exploit", "взлом",
	}},
	{Name: "market_impact", Weight: 2, Terms: []string{
		"market share", "рынок", "рынка", "stock", "акции", "shares", "valuation", "капитализац",
	}},
	{Name: "regulatory", Weight: 2, Terms: []string{
		"regulation", "регулир", "law", "закон", "antitrust", "антимонопол", "ban", "запрет",
	}},
	{Name: "tech_giants", Weight: 1, Terms: []string{
		"google", "apple", "microsoft", "amazon", "nvidia", "openai", "meta", "tesla", "яндекс", "сбер",
	}},
	{Name: "speculative", Weight: -2, Terms: []string{
		"rumor", "rumour", "слух", "unconfirmed", "неподтвержд", "reportedly", "возможно",
	}},
}

// DefaultVocabulary is scanned in order for keyword tags.
var DefaultVocabulary = []VocabularyTerm{
	{Display: "AI", Match: []string{"ai"}},
	{Display: "ИИ", Match: []string{"ии"}},
	{Display: "машинное обучение", Match: []string{"машинное обучение"}},
	{Display: "neural networks", Match: []string{"neural network"}},
	{Display: "blockchain", Match: []string{"blockchain"}},
	{Display: "cloud", Match: []string{"cloud"}},
	{Display: "облако", Match: []string{"облак"}},
	{Display: "automation", Match: []string{"automation"}},
	{Display: "robotics", Match: []string{"robotic"}},
	{Display: "IoT", Match: []string{"iot"}},
	{Display: "API", Match: []string{"api"}},
	{Display: "стартап", Match: []string{"стартап"}},
	{Display: "startup", Match: []string{"startup"}},
	{Display: "инвестиции", Match: []string{"инвестиц"}},
	{Display: "funding", Match: []string{"funding"}},
}

// DefaultChannelMap routes categories to channel keys.
// Categories missing here fall back to the default channel.
var DefaultChannelMap = map[string][]string{
	CategoryGeneral:    {ChannelITNews},
	CategoryAutomation: {ChannelAutomation},
	CategoryRobotics:   {ChannelRobotics},
	CategoryAI:         {ChannelITNews, ChannelAutomation},
}

// DefaultAllChannels is the full channel set used for high-importance items.
var DefaultAllChannels = []string{ChannelITNews, ChannelAutomation, ChannelRobotics}
