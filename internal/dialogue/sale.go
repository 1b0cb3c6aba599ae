package dialogue

import (
	"fmt"
	"sort"
	"strings"
)

// ItemCategory is a kind of product on the kiosk shelves.
type ItemCategory string

const (
	ItemChipsBag           ItemCategory = "ChipsBag"
	ItemSproingles         ItemCategory = "Sproingles"
	ItemBoxOfChocolates    ItemCategory = "BoxOfChocolates"
	ItemFamilyChips        ItemCategory = "FamilyChips"
	ItemSodaCan            ItemCategory = "SodaCan"
	ItemBeerBottle         ItemCategory = "BeerBottle"
	ItemHaynakoBeer        ItemCategory = "Haynako_Beer"
	ItemAkiraBeer          ItemCategory = "Akira_Beer"
	ItemWineBottle         ItemCategory = "WineBottle"
	ItemBluePortCigarettes ItemCategory = "BluePortCigarettes"
	ItemRamboloCigarettes  ItemCategory = "RamboloCigarettes"
	ItemHotShotCigarettes  ItemCategory = "HotShotCigarettes"
	ItemDirtyMagazine      ItemCategory = "DirtyMagazine"
	ItemNerdComics         ItemCategory = "NerdComics"
	ItemPackage            ItemCategory = "Package"
	ItemChickenJerky       ItemCategory = "Chicken_Jerky"
	ItemGiddyBeer          ItemCategory = "Giddy_Beer"
)

// prices are unit prices in kiosk credits.
var prices = map[ItemCategory]float64{
	ItemChipsBag:           3.0,
	ItemSproingles:         2.5,
	ItemBoxOfChocolates:    10.0,
	ItemFamilyChips:        5.0,
	ItemSodaCan:            2.5,
	ItemBeerBottle:         3.5,
	ItemHaynakoBeer:        15,
	ItemAkiraBeer:          16,
	ItemWineBottle:         7.5,
	ItemBluePortCigarettes: 14,
	ItemRamboloCigarettes:  16,
	ItemHotShotCigarettes:  15,
	ItemDirtyMagazine:      12,
	ItemNerdComics:         5.5,
	ItemPackage:            0,
	ItemChickenJerky:       6,
	ItemGiddyBeer:          3,
}

// Catalogue returns every known category sorted by name.
func Catalogue() []ItemCategory {
	out := make([]ItemCategory, 0, len(prices))
	for c := range prices {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseItemCategory validates an authoring name.
func ParseItemCategory(s string) (ItemCategory, error) {
	c := ItemCategory(strings.TrimSpace(s))
	if _, ok := prices[c]; !ok {
		return "", fmt.Errorf("unknown item category %q", s)
	}
	return c, nil
}

// Price returns the unit price of c.
func (c ItemCategory) Price() float64 { return prices[c] }

// Display renders the category for dialogue text.
func (c ItemCategory) Display() string { return strings.ReplaceAll(string(c), "_", " ") }

// Total sums the unit prices of items.
func Total(items []ItemCategory) float64 {
	var sum float64
	for _, c := range items {
		sum += c.Price()
	}
	return sum
}

// MatchSale reports whether present is exactly the multiset requested: same
// size, same per-category counts, nothing extra and nothing missing.
func MatchSale(requested, present []ItemCategory) bool {
	if len(requested) != len(present) {
		return false
	}
	remaining := make(map[ItemCategory]int, len(present))
	for _, c := range present {
		remaining[c]++
	}
	for _, c := range requested {
		if remaining[c] == 0 {
			return false
		}
		remaining[c]--
		if remaining[c] == 0 {
			delete(remaining, c)
		}
	}
	return len(remaining) == 0
}

// rejectionText is what the customer says when the checkout does not match.
func rejectionText(requested []ItemCategory) string {
	names := make([]string, len(requested))
	for i, c := range requested {
		names[i] = c.Display()
	}
	return fmt.Sprintf("I asked for %s, that's it.", strings.Join(names, ", "))
}
