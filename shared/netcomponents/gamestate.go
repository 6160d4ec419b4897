package netcomponents

import (
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

type NetGameStateData struct {
	Kills      map[netconfig.ControllerID]int
	Deaths     map[netconfig.ControllerID]int
	MatchState netconfig.MatchStateID
}

var NetGameState = donburi.NewComponentType[NetGameStateData]()
