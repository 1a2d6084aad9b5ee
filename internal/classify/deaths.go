package classify

// DefaultDeathMessages is the canonical list of vanilla death-message
// suffixes, in match priority order. Entries are regular expressions; `.*`
// stands for a killer or weapon name.
//
// Source: http://minecraft.gamepedia.com/Health#Death_messages
var DefaultDeathMessages = []string{
	"blew up",
	"burned to death",
	"drowned",
	"drowned whilst trying to escape .*",
	"fell from a high place",
	"fell from a high place and fell out of the world",
	"fell into a patch of cacti",
	"fell into a patch of fire",
	"fell off a ladder",
	"fell off some vines",
	"fell out of the water",
	"fell out of the world",
	"got finished off by .*",
	"got finished off by .* using .*",
	"hit the ground too hard",
	"starved to death",
	"suffocated in a wall",
	"tried to swim in lava",
	"tried to swim in lava while trying to escape .*",
	"walked into a cactus while trying to escape .*",
	"walked into a fire whilst fighting .*",
	"was blown from a high place by .*",
	"was blown up by .*",
	"was burnt to a crisp whilst fighting .*",
	"was doomed to fall by .*",
	"was fireballed by .*",
	"was killed by .* using magic",
	"was killed by magic",
	"was killed while trying to hurt .*",
	"was pricked to death",
	"was pummeled by .*",
	"was shot by .*",
	"was shot off a ladder by .*",
	"was shot off some vines by .*",
	"was slain by .*",
	"was slain by .* using .*",
	"was squashed by a falling anvil",
	"was squashed by a falling block",
	"was struck by lightning",
	"went up in flames",
	"withered away",
}
