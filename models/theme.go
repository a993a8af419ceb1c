package models

// Theme is a themed learning universe (a set of games and activities
// sharing one visual world). The list ships with the application.
type Theme struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	RequiredFeature string `json:"-"` // empty means available on the free tier
}

var themes = []Theme{
	{
		ID:          "jungle-numbers",
		Name:        "La jungle des nombres",
		Description: "Compter et calculer avec les animaux de la jungle",
	},
	{
		ID:          "letter-ocean",
		Name:        "L'océan des lettres",
		Description: "Découvrir les lettres et les premiers mots sous la mer",
	},
	{
		ID:              "space-logic",
		Name:            "Logique spatiale",
		Description:     "Énigmes et suites logiques dans l'espace",
		RequiredFeature: FeatureAllThemes,
	},
	{
		ID:              "time-travelers",
		Name:            "Les voyageurs du temps",
		Description:     "L'histoire racontée aux enfants, époque par époque",
		RequiredFeature: FeatureAllThemes,
	},
	{
		ID:              "melody-workshop",
		Name:            "L'atelier des mélodies",
		Description:     "Premiers pas en musique et en rythme",
		RequiredFeature: FeatureAllThemes,
	},
}

func AllThemes() []Theme {
	return themes
}
