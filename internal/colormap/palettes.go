// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package colormap

// Built-in palette names.
const (
	PaletteGreenRed = "green-red"
	PaletteAmber    = "amber"
)

// greenRed runs from dim (green) to bright (red); used by the mean view.
var greenRed = []string{
	"#4FFF8A", "#57FA83", "#5FF67C", "#67F176", "#6FED6F", "#77E868",
	"#7FE462", "#87DF5B", "#8FDB54", "#97D64E", "#9FD247", "#A7CD40",
	"#AFC93A", "#B7C433", "#BFC02C", "#C7BB26", "#CFB71F", "#D7B218",
	"#DFAE12", "#E7A90B", "#F0A505", "#F09C06", "#F09308", "#F18B09",
	"#F1820B", "#F17A0C", "#F2710E", "#F26910", "#F26011", "#F35813",
	"#F34F14", "#F44716", "#F43E17", "#F43619", "#F52D1B", "#F5251C",
	"#F51C1E", "#F6141F", "#F60B21", "#F70323",
}

// amber runs from near-black to warm white; used by the timeline heatmap.
var amber = []string{
	"#242424", "#282623", "#2C2922", "#302C22", "#352E21", "#393120",
	"#3D3420", "#41371F", "#46391E", "#4A3C1E", "#4E3F1D", "#53411C",
	"#57441C", "#5B471B", "#5F4A1A", "#644C1A", "#684F19", "#6C5218",
	"#715418", "#755717", "#795A16", "#7D5D16", "#825F15", "#866214",
	"#8A6514", "#8F6813", "#936A12", "#976D12", "#9B7011", "#A07210",
	"#A47510", "#A8780F", "#AC7B0E", "#B17D0E", "#B5800D", "#B9830C",
	"#BE850C", "#C2880B", "#C68B0A", "#CA8E0A", "#CF9009", "#D39308",
	"#D79608", "#DC9807", "#E09B06", "#E49E06", "#E8A105", "#EDA304",
	"#F1A604", "#F5A903", "#FAAC03", "#FAAD07", "#FAAF0B", "#FAB00F",
	"#FAB214", "#FAB318", "#FAB51C", "#FAB621", "#FAB825", "#FAB929",
	"#FBBB2E", "#FBBD32", "#FBBE36", "#FBC03A", "#FBC13F", "#FBC343",
	"#FBC447", "#FBC64C", "#FBC750", "#FBC954", "#FCCB59", "#FCCC5D",
	"#FCCE61", "#FCCF66", "#FCD16A", "#FCD26E", "#FCD472", "#FCD577",
	"#FCD77B", "#FCD87F", "#FDDA84", "#FDDC88", "#FDDD8C", "#FDDF91",
	"#FDE095", "#FDE299", "#FDE39E", "#FDE5A2", "#FDE6A6", "#FDE8AA",
	"#FEEAAF", "#FEEBB3", "#FEEDB7", "#FEEEBC", "#FEF0C0", "#FEF1C4",
	"#FEF3C9", "#FEF4CD", "#FEF6D1", "#FFF8D6",
}

var builtin = map[string][]string{
	PaletteGreenRed: greenRed,
	PaletteAmber:    amber,
}
