package database

import "github.com/lunaseul/timegacha/timegacha/gacha"

type seriesSeed struct {
	name       string
	characters []string
}

// templateSeeds is the fixed catalog: each series owns an ordered
// roster, and a character's position in the roster decides which
// rarities it is printed at.
func templateSeeds() []seriesSeed {
	return []seriesSeed{
		{
			name:       "One Piece",
			characters: []string{"Luffy", "Zoro", "Nami", "Sanji", "Usopp", "Chopper", "Robin", "Franky", "Brook"},
		},
		{
			name:       "Naruto",
			characters: []string{"Naruto", "Sasuke", "Sakura", "Kakashi", "Gaara", "Tsunade", "Jiraiya", "Orochimaru"},
		},
		{
			name:       "Demon Slayer",
			characters: []string{"Tanjiro", "Nezuko", "Zenitsu", "Inosuke", "Giyu", "Shinobu", "Rengoku"},
		},
		{
			name:       "Frieren",
			characters: []string{"Frieren", "Fern", "Stark", "Heiter", "Eisen", "Sein", "Uebel"},
		},
	}
}

// raritiesForIndex assigns rarities by roster position: everyone gets
// N, the first 4/5 of the roster also get R, the first half SR and the
// first third SSR.
func raritiesForIndex(index, total int) []gacha.Rarity {
	rarities := []gacha.Rarity{gacha.RarityN}
	if index < total*4/5 {
		rarities = append(rarities, gacha.RarityR)
	}
	if index < total/2 {
		rarities = append(rarities, gacha.RaritySR)
	}
	if index < total/3 {
		rarities = append(rarities, gacha.RaritySSR)
	}
	return rarities
}
