package rand

import (
	mrand "math/rand"
)

var adjectives = []string{
	"agile", "brave", "calm", "daring", "eager",
	"fancy", "gentle", "happy", "jolly", "keen",
	"kind", "lively", "mighty", "noble", "playful",
	"quick", "radiant", "spirited", "trusty", "upbeat",
	"vibrant", "wise", "youthful", "zealous", "ambitious",
	"bright", "cheerful", "dynamic", "elegant", "fearless",
	"graceful", "hopeful", "jovial", "loyal", "nimble",
	"sturdy", "tenacious", "vigorous", "warm", "zesty",
}

var birds = []string{
	"albatross", "bluebird", "canary", "dove", "eagle",
	"falcon", "goldfinch", "hawk", "ibis", "jay",
	"kingfisher", "lark", "magpie", "nightingale", "oriole",
	"parrot", "quail", "robin", "sparrow", "toucan",
	"vulture", "woodpecker", "yellowhammer", "avocet", "bunting",
	"crane", "duck", "egret", "flamingo", "goose",
	"heron", "junco", "kestrel", "loon", "mockingbird",
	"nuthatch", "owl", "pelican", "raven", "starling",
	"tern", "vireo", "wren", "yellowthroat",
}

// NewName returns a readable adjective-bird name. Names are lowercase
// single tokens joined by a hyphen, safe to embed in NATS subjects,
// MQTT topics and file names.
func NewName() string {
	adj := adjectives[mrand.Intn(len(adjectives))]
	bird := birds[mrand.Intn(len(birds))]
	return adj + "-" + bird
}
