package rules

import "github.com/WessleyAI/installbom/engine/domain"

var (
	signalOnly   = []domain.CableFunction{domain.CableSignal}
	lowVoltage   = []domain.CableFunction{domain.CableLowVoltage}
	signalAndLow = []domain.CableFunction{domain.CableSignal, domain.CableLowVoltage}
)

// RJ45Connector is the connector item crimped on every network run end.
const RJ45Connector = "Коннектор RJ-45"

// DefaultRules is the built-in device-type table.
var DefaultRules = []Rule{
	{
		Aliases: []string{"камера", "ip камера", "ip-камера", "видеокамера", "ip видеокамера",
			"камера видеонаблюдения", "аналоговая камера", "купольная камера", "цилиндрическая камера"},
		Requirements: Requirements{
			Name:                 "Видеокамера",
			CableFunctions:       signalOnly,
			IsCamera:             true,
			RequiresAccessory:    true,
			RequiresViewingDepth: true,
		},
	},
	{
		Aliases: []string{"сетевая розетка", "компьютерная розетка", "розетка rj-45", "точка подключения", "рабочее место"},
		Requirements: Requirements{
			Name:           "Сетевая точка",
			CableFunctions: signalOnly,
			Materials: []Material{
				{Name: RJ45Connector, Unit: domain.PieceUnit, PerUnit: 2},
				{Name: "Розетка RJ-45 накладная", Unit: domain.PieceUnit, PerUnit: 1},
			},
		},
	},
	{
		Aliases: []string{"точка доступа", "точка доступа wi-fi", "wi-fi точка доступа"},
		Requirements: Requirements{
			Name:           "Точка доступа Wi-Fi",
			CableFunctions: signalOnly,
			Materials:      []Material{{Name: RJ45Connector, Unit: domain.PieceUnit, PerUnit: 2}},
		},
	},
	{
		Aliases: []string{"считыватель", "считыватель карт", "считыватель скуд"},
		Requirements: Requirements{Name: "Считыватель", CableFunctions: signalAndLow},
	},
	{
		Aliases: []string{"электромагнитный замок", "замок", "электромеханический замок"},
		Requirements: Requirements{
			Name:           "Электромагнитный замок",
			CableFunctions: lowVoltage,
			Materials:      []Material{{Name: "Уголок монтажный для замка", Unit: domain.PieceUnit, PerUnit: 1}},
		},
	},
	{
		Aliases:      []string{"кнопка выхода", "кнопка выхода скуд"},
		Requirements: Requirements{Name: "Кнопка выхода", CableFunctions: lowVoltage},
	},
	{
		Aliases:      []string{"контроллер скуд", "контроллер доступа"},
		Requirements: Requirements{Name: "Контроллер СКУД", CableFunctions: signalAndLow},
	},
	{
		Aliases:      []string{"вызывная панель", "домофон", "видеодомофон"},
		Requirements: Requirements{Name: "Вызывная панель", CableFunctions: signalAndLow},
	},
	{
		Aliases: []string{"коммутатор", "poe коммутатор", "свитч"},
		Requirements: Requirements{
			Name:           "Коммутатор",
			CableFunctions: signalOnly,
			Materials:      []Material{{Name: "Патч-корд 0,5 м", Unit: domain.PieceUnit, PerUnit: 1}},
		},
	},
	{
		Aliases:      []string{"видеорегистратор", "nvr", "регистратор"},
		Requirements: Requirements{Name: "Видеорегистратор", CableFunctions: signalOnly},
	},
}
