package config

// FeedConfig describes one monitored agency feed. The registry is fixed at
// deploy time and passed explicitly into the sync service so tests can
// substitute their own set.
type FeedConfig struct {
	Agency         string
	Source         string // canonical source label used in storage
	URL            string
	Keywords       []string // relevance gate, case-insensitive substrings
	DefaultUrgency string   // fallback when neither urgency tier matches
	Category       string
	Description    string
}

// DefaultFeeds returns the built-in agency feed registry.
func DefaultFeeds() []FeedConfig {
	return []FeedConfig{
		{
			Agency:         "FDA",
			Source:         "fda_recalls",
			URL:            "https://www.fda.gov/about-fda/contact-fda/stay-informed/rss-feeds/recalls/rss.xml",
			Keywords:       []string{"recall", "food", "safety", "contamination", "allergen", "listeria", "salmonella", "e. coli"},
			DefaultUrgency: "High",
			Category:       "food_safety",
			Description:    "FDA food recalls and safety alerts",
		},
		{
			Agency:         "FDA",
			Source:         "fda_medwatch",
			URL:            "https://www.fda.gov/about-fda/contact-fda/stay-informed/rss-feeds/medwatch/rss.xml",
			Keywords:       []string{"food", "dietary", "supplement", "nutrition", "adulterated"},
			DefaultUrgency: "Medium",
			Category:       "product_safety",
			Description:    "FDA MedWatch safety alerts",
		},
		{
			Agency:         "USDA",
			Source:         "fsis_recalls",
			URL:            "https://www.fsis.usda.gov/fsis-content/rss/recalls.xml",
			Keywords:       []string{"recall", "meat", "poultry", "egg", "contamination", "undeclared"},
			DefaultUrgency: "High",
			Category:       "food_safety",
			Description:    "USDA FSIS recalls and public health alerts",
		},
		{
			Agency:         "EPA",
			Source:         "epa_enforcement",
			URL:            "https://www.epa.gov/newsreleases/search/rss",
			Keywords:       []string{"water", "pesticide", "chemical", "contamination", "enforcement", "violation"},
			DefaultUrgency: "Medium",
			Category:       "environmental",
			Description:    "EPA news releases and enforcement actions",
		},
		{
			Agency:         "CDC",
			Source:         "cdc_outbreaks",
			URL:            "https://tools.cdc.gov/api/v2/resources/media/316422.rss",
			Keywords:       []string{"outbreak", "foodborne", "illness", "infection", "salmonella", "listeria"},
			DefaultUrgency: "High",
			Category:       "public_health",
			Description:    "CDC foodborne outbreak investigations",
		},
		{
			Agency:         "NOAA",
			Source:         "noaa_fisheries",
			URL:            "https://www.fisheries.noaa.gov/news-and-announcements/news/rss",
			Keywords:       []string{"seafood", "fishery", "import", "advisory", "mercury", "closure"},
			DefaultUrgency: "Low",
			Category:       "seafood",
			Description:    "NOAA fisheries news and advisories",
		},
	}
}

// FeedsForAgency filters the registry down to one agency's feeds.
func FeedsForAgency(feeds []FeedConfig, agency string) []FeedConfig {
	var out []FeedConfig
	for _, f := range feeds {
		if f.Agency == agency {
			out = append(out, f)
		}
	}
	return out
}
