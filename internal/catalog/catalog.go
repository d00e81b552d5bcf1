// Package catalog holds the static hardware and shop data shipped with the
// server. Both documents are embedded and parsed once at startup.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed hardware.json
var hardwareRaw []byte

//go:embed shop.json
var shopRaw []byte

// StartPC is the fixed part list of the starter device a fresh account gets
// for free.
type StartPC struct {
	Mainboard       string   `json:"mainboard"`
	CPU             []string `json:"cpu"`
	ProcessorCooler []string `json:"processorCooler"`
	RAM             []string `json:"ram"`
	GPU             []string `json:"gpu"`
	Disk            []string `json:"disk"`
	PowerPack       string   `json:"powerPack"`
	Case            string   `json:"case"`
}

type GraphicUnit struct {
	Name      string  `json:"name"`
	RAMSize   float64 `json:"ramSize"`
	Frequency float64 `json:"frequency"`
}

type NetworkPort struct {
	Name      string  `json:"name"`
	Interface string  `json:"interface"`
	Speed     float64 `json:"speed"`
}

type Mainboard struct {
	ID                 int          `json:"id"`
	GraphicUnitOnBoard *GraphicUnit `json:"graphicUnitOnBoard"`
	NetworkPort        NetworkPort  `json:"networkPort"`
}

type CPU struct {
	ID           int          `json:"id"`
	FrequencyMax float64      `json:"frequencyMax"`
	Cores        float64      `json:"cores"`
	GraphicUnit  *GraphicUnit `json:"graphicUnit"`
}

type RAM struct {
	ID        int     `json:"id"`
	RAMSize   float64 `json:"ramSize"`
	Frequency float64 `json:"frequency"`
}

type GPU struct {
	ID        int     `json:"id"`
	RAMSize   float64 `json:"ramSize"`
	Frequency float64 `json:"frequency"`
}

type Disk struct {
	ID           int     `json:"id"`
	WritingSpeed float64 `json:"writingSpeed"`
	ReadingSpeed float64 `json:"readingSpeed"`
}

type HardwareConfig struct {
	StartPC          StartPC              `json:"start_pc"`
	Mainboards       map[string]Mainboard `json:"mainboard"`
	CPUs             map[string]CPU       `json:"cpu"`
	ProcessorCoolers map[string]any       `json:"processorCooler"`
	RAMs             map[string]RAM       `json:"ram"`
	GPUs             map[string]GPU       `json:"gpu"`
	Disks            map[string]Disk      `json:"disk"`
	PowerPacks       map[string]any       `json:"powerPack"`
	Cases            map[string]any       `json:"case"`
}

// Item is a single purchasable shop entry.
type Item struct {
	ID        int    `json:"id"`
	Price     int64  `json:"price"`
	RelatedMS string `json:"related_ms"`
}

// Category nests arbitrarily deep; leaf categories have an empty Categories
// map.
type Category struct {
	Categories map[string]*Category `json:"categories"`
	Index      int                  `json:"index"`
	Items      map[string]Item      `json:"items"`
}

var (
	hardware    HardwareConfig
	hardwareDoc map[string]any
	shopRoot    map[string]*Category
)

func init() {
	if err := json.Unmarshal(hardwareRaw, &hardware); err != nil {
		panic(fmt.Sprintf("catalog: bad hardware.json: %v", err))
	}
	if err := json.Unmarshal(hardwareRaw, &hardwareDoc); err != nil {
		panic(fmt.Sprintf("catalog: bad hardware.json: %v", err))
	}
	var shop struct {
		Categories map[string]*Category `json:"categories"`
	}
	if err := json.Unmarshal(shopRaw, &shop); err != nil {
		panic(fmt.Sprintf("catalog: bad shop.json: %v", err))
	}
	shopRoot = shop.Categories
}

// Hardware returns the parsed hardware catalog.
func Hardware() *HardwareConfig { return &hardware }

// HardwareDocument returns the full hardware catalog as a generic document,
// exactly as shipped, for the list endpoint.
func HardwareDocument() map[string]any { return hardwareDoc }

// Shop returns the root shop categories.
func Shop() map[string]*Category { return shopRoot }

// PartExists reports whether the named element exists in the given slot of
// the hardware catalog.
func PartExists(slot, name string) bool {
	switch slot {
	case "mainboard":
		_, ok := hardware.Mainboards[name]
		return ok
	case "cpu":
		_, ok := hardware.CPUs[name]
		return ok
	case "processorCooler":
		_, ok := hardware.ProcessorCoolers[name]
		return ok
	case "ram":
		_, ok := hardware.RAMs[name]
		return ok
	case "gpu":
		_, ok := hardware.GPUs[name]
		return ok
	case "disk":
		_, ok := hardware.Disks[name]
		return ok
	case "powerPack":
		_, ok := hardware.PowerPacks[name]
		return ok
	case "case":
		_, ok := hardware.Cases[name]
		return ok
	}
	return false
}

// Performance aggregates the five performance dimensions of a part list.
// The order is cpu, ram, gpu, disk, network.
func Performance(mainboard string, cpus, rams, gpus, disks []string) [5]float64 {
	var p [5]float64
	for _, name := range cpus {
		c := hardware.CPUs[name]
		p[0] += c.Cores * c.FrequencyMax / 1000
		if c.GraphicUnit != nil {
			p[2] += c.GraphicUnit.RAMSize * c.GraphicUnit.Frequency / 1000000
		}
	}
	for _, name := range rams {
		r := hardware.RAMs[name]
		p[1] += r.RAMSize * r.Frequency / 1000000
	}
	for _, name := range gpus {
		g := hardware.GPUs[name]
		p[2] += g.RAMSize * g.Frequency / 1000000
	}
	for _, name := range disks {
		d := hardware.Disks[name]
		p[3] += (d.WritingSpeed + d.ReadingSpeed) / 2 / 100
	}
	if mb, ok := hardware.Mainboards[mainboard]; ok {
		if mb.GraphicUnitOnBoard != nil {
			p[2] += mb.GraphicUnitOnBoard.RAMSize * mb.GraphicUnitOnBoard.Frequency / 1000000
		}
		p[4] = mb.NetworkPort.Speed / 100
	}
	return p
}

// FindItem looks a product up by name anywhere in the shop tree. The second
// return value is the category chain from the item's category up to the
// root, terminated by nil, as clients expect it.
func FindItem(product string) (*Item, []any) {
	return findItem(shopRoot, product, nil)
}

func findItem(categories map[string]*Category, product string, parents []any) (*Item, []any) {
	for name, cat := range categories {
		if item, ok := cat.Items[product]; ok {
			chain := append([]any{name}, parents...)
			chain = append(chain, nil)
			return &item, chain
		}
		if item, chain := findItem(cat.Categories, product, append([]any{name}, parents...)); item != nil {
			return item, chain
		}
	}
	return nil, nil
}
