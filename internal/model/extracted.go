package model

// ExtractedEvent 解析器与扫描器之间的线上契约：纯提取结果，未做任何分类。
// discipline 为解析器给出的原始提示，不是规范化值；is_competition 由分类器判定。
type ExtractedEvent struct {
	Name           string   `json:"name"`                     // 必填，非空
	DateStart      string   `json:"date_start"`               // 必填，ISO YYYY-MM-DD
	DateEnd        string   `json:"date_end,omitempty"`       // 可选
	VenueName      string   `json:"venue_name"`               // 必填（原始名，入库前规范化）
	VenuePostcode  string   `json:"venue_postcode,omitempty"` // 可选
	Latitude       *float64 `json:"latitude,omitempty"`       // 可选（UK范围外会被丢弃）
	Longitude      *float64 `json:"longitude,omitempty"`
	Discipline     string   `json:"discipline,omitempty"` // 原始项目提示
	HasPonyClasses bool     `json:"has_pony_classes,omitempty"`
	Classes        []string `json:"classes,omitempty"` // 级别列表（保序）
	URL            string   `json:"url,omitempty"`
	Description    string   `json:"description,omitempty"`
}
