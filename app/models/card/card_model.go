// Package card 埃及神谕卡牌目录
package card

// Card 神谕卡牌，共 22 张，运行期不可变
type Card struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Deity   string `json:"deity"`
	Symbol  string `json:"symbol"`
	Meaning string `json:"meaning"`
}

// DeckSize 卡组固定张数
const DeckSize = 22

// catalog 固定卡组，卡面文案为法语（面向法语用户的产品）
var catalog = [DeckSize]Card{
	{ID: 0, Name: "Râ", Deity: "Dieu Soleil", Symbol: "☀️", Meaning: "Puissance, vie, création"},
	{ID: 1, Name: "Isis", Deity: "Déesse de la Magie", Symbol: "🌙", Meaning: "Magie, protection, sagesse"},
	{ID: 2, Name: "Osiris", Deity: "Dieu de l'Au-delà", Symbol: "⚱️", Meaning: "Renaissance, éternité, jugement"},
	{ID: 3, Name: "Anubis", Deity: "Guide des Morts", Symbol: "🐺", Meaning: "Transition, protection, vérité"},
	{ID: 4, Name: "Horus", Deity: "Dieu Faucon", Symbol: "🦅", Meaning: "Vision, royauté, victoire"},
	{ID: 5, Name: "Thot", Deity: "Dieu de la Sagesse", Symbol: "📜", Meaning: "Connaissance, écriture, magie"},
	{ID: 6, Name: "Bastet", Deity: "Déesse Chatte", Symbol: "🐱", Meaning: "Foyer, fertilité, joie"},
	{ID: 7, Name: "Seth", Deity: "Dieu du Chaos", Symbol: "⚡", Meaning: "Chaos, force, tempête"},
	{ID: 8, Name: "Maât", Deity: "Déesse de la Justice", Symbol: "⚖️", Meaning: "Vérité, équilibre, ordre"},
	{ID: 9, Name: "Hathor", Deity: "Déesse de l'Amour", Symbol: "💫", Meaning: "Amour, beauté, musique"},
	{ID: 10, Name: "Sekhmet", Deity: "Déesse Lionne", Symbol: "🦁", Meaning: "Guerre, guérison, puissance"},
	{ID: 11, Name: "Ptah", Deity: "Dieu Créateur", Symbol: "🔨", Meaning: "Artisanat, création, stabilité"},
	{ID: 12, Name: "Nephthys", Deity: "Dame du Temple", Symbol: "🏛️", Meaning: "Mystère, mort, renaissance"},
	{ID: 13, Name: "Sobek", Deity: "Dieu Crocodile", Symbol: "🐊", Meaning: "Force, fertilité, protection"},
	{ID: 14, Name: "Khépri", Deity: "Scarabée Sacré", Symbol: "🪲", Meaning: "Transformation, aube, renouveau"},
	{ID: 15, Name: "Nout", Deity: "Déesse du Ciel", Symbol: "✨", Meaning: "Ciel, étoiles, protection"},
	{ID: 16, Name: "Geb", Deity: "Dieu de la Terre", Symbol: "🌍", Meaning: "Terre, fertilité, fondation"},
	{ID: 17, Name: "Amon", Deity: "Roi des Dieux", Symbol: "👑", Meaning: "Mystère, souffle, création"},
	{ID: 18, Name: "Sekhemet", Deity: "Œil de Râ", Symbol: "👁️", Meaning: "Protection, clairvoyance, feu"},
	{ID: 19, Name: "Le Nil", Deity: "Fleuve Sacré", Symbol: "🌊", Meaning: "Abondance, vie, purification"},
	{ID: 20, Name: "L'Ankh", Deity: "Clé de Vie", Symbol: "☥", Meaning: "Vie éternelle, santé, bonheur"},
	{ID: 21, Name: "Le Scarabée d'Or", Deity: "Talisman", Symbol: "🌟", Meaning: "Chance, protection, destinée"},
}

// All 返回卡组的一份拷贝，调用方可以安全地重排
func All() []Card {
	cards := make([]Card, DeckSize)
	copy(cards[:], catalog[:])
	return cards
}

// Find 按 ID 查找卡牌
func Find(id int) (Card, bool) {
	if id < 0 || id >= DeckSize {
		return Card{}, false
	}
	return catalog[id], true
}
