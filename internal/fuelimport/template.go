package fuelimport

import "strings"

// TemplateFilename is the suggested download name for Template.
const TemplateFilename = "fuel_records_template.csv"

var templateRows = []string{
	strings.Join(Columns(), ","),
	"2025-06-10,品川 800 あ 12-34,45.2,150,6780,85234,ENEOS 高崎インター店,山田 太郎,corporate_card,R202506100123,定期給油",
	"2025-06-09,品川 500 い 56-78,38.7,150,5805,67891,Shell 前橋南店,佐藤 一郎,cash,,",
	"2025-06-08,品川 300 う 90-12,42.1,150,6315,84987,コスモ石油 高崎中央店,鈴木 次郎,fuel_card,F20250608001,長距離運送後",
}

// Template returns an example import file with every column and three rows.
func Template() []byte {
	return []byte(strings.Join(templateRows, "\n") + "\n")
}
