package seed

// SourceDef 编译内置的来源定义（启动时播种，运行期不新建）
type SourceDef struct {
	Key         string // 解析器键，稳定不变
	DisplayName string
	URL         string
	Enabled     bool
}

// VenueSeed 编译内置的场地种子（名称已是规范化形式）
type VenueSeed struct {
	CanonicalName string
	Postcode      string // 可为空
	Latitude      float64
	Longitude     float64 // 纬经度同时为0视为未知
	Aliases       []string
}

// Sources 全部来源定义。key 与解析器注册键一一对应；
// 没有专用解析器的来源走通用LLM提取器。
var Sources = []SourceDef{
	{Key: "arena_uk", DisplayName: "Arena UK", URL: "https://www.arenauk.com/whats-on/", Enabled: true},
	{Key: "addington", DisplayName: "Addington Equestrian", URL: "https://addingtonequestrian.com/whats-on/", Enabled: true},
	{Key: "abbey_farm", DisplayName: "Abbey Farm Events", URL: "https://www.abbeyfarmevents.co.uk/events", Enabled: true},
	{Key: "ashwood", DisplayName: "Ashwood Equestrian", URL: "https://www.ashwoodequestrian.com/events", Enabled: true},
	{Key: "bolesworth", DisplayName: "Bolesworth", URL: "https://www.bolesworth.com/whats-on/", Enabled: true},
	{Key: "brook_farm", DisplayName: "Brook Farm Training Centre", URL: "https://www.brookfarmtrainingcentre.co.uk/diary", Enabled: true},
	{Key: "british_dressage", DisplayName: "British Dressage", URL: "https://www.britishdressage.co.uk/competitions/", Enabled: true},
	{Key: "british_eventing", DisplayName: "British Eventing", URL: "https://www.britisheventing.com/events", Enabled: true},
	{Key: "british_showjumping", DisplayName: "British Showjumping", URL: "https://www.britishshowjumping.co.uk/shows", Enabled: true},
	{Key: "bsps", DisplayName: "BSPS", URL: "https://www.bsps.com/shows", Enabled: true},
	{Key: "dean_valley", DisplayName: "Dean Valley Equestrian", URL: "https://www.deanvalleyequestrian.co.uk/events", Enabled: true},
	{Key: "derby_college", DisplayName: "Derby College Equestrian", URL: "https://www.derby-college.ac.uk/equestrian-events", Enabled: true},
	{Key: "endurance_gb", DisplayName: "Endurance GB", URL: "https://www.endurancegb.co.uk/rides", Enabled: true},
	{Key: "epworth", DisplayName: "Epworth Equestrian", URL: "https://www.epworthequestrian.co.uk/shows", Enabled: true},
	{Key: "equo_events", DisplayName: "Equo Events", URL: "https://www.equoevents.co.uk/events/search", Enabled: true},
	{Key: "hartpury", DisplayName: "Hartpury Equine", URL: "https://www.hartpury.ac.uk/equine/events/", Enabled: true},
	{Key: "hickstead", DisplayName: "Hickstead", URL: "https://www.hickstead.co.uk/whats-on/", Enabled: true},
	{Key: "hope_valley", DisplayName: "Hope Valley Saddlery Events", URL: "https://www.hopevalleyonline.co.uk/events", Enabled: true},
	{Key: "horse_events", DisplayName: "Horse Events", URL: "https://www.horse-events.co.uk/wp-json/tribe/events/v1/events", Enabled: true},
	{Key: "horse_monkey", DisplayName: "Horse Monkey", URL: "https://www.horsemonkey.com/events", Enabled: true},
	{Key: "horsevents", DisplayName: "Horsevents", URL: "https://horsevents.co.uk/events/", Enabled: true},
	{Key: "hoys", DisplayName: "Horse of the Year Show", URL: "https://hoys.co.uk/", Enabled: true},
	{Key: "kelsall_hill", DisplayName: "Kelsall Hill", URL: "https://www.kelsallhill.co.uk/whats-on/", Enabled: true},
	{Key: "keysoe_international", DisplayName: "Keysoe International", URL: "https://www.keysoe.com/events/", Enabled: true},
	{Key: "my_riding_life", DisplayName: "My Riding Life", URL: "https://www.myridinglife.com/eventlist", Enabled: true},
	{Key: "nsea", DisplayName: "NSEA", URL: "https://www.nsea.org.uk/competitions", Enabled: true},
	{Key: "nvec", DisplayName: "Northallerton Venue EC", URL: "https://www.nvec.co.uk/events", Enabled: true},
	{Key: "osberton", DisplayName: "Osberton Estate", URL: "https://www.osbertonestate.co.uk/events", Enabled: true},
	{Key: "pony_club", DisplayName: "The Pony Club", URL: "https://pcuk.org/events/", Enabled: true},
	{Key: "royal_windsor", DisplayName: "Royal Windsor Horse Show", URL: "https://rwhs.co.uk/", Enabled: true},
	{Key: "solihull", DisplayName: "Solihull Riding Club", URL: "https://www.solihullridingclub.co.uk/events", Enabled: true},
	{Key: "sykehouse", DisplayName: "Sykehouse Arena", URL: "https://www.sykehousearena.co.uk/shows", Enabled: true},
	{Key: "trailblazers", DisplayName: "Trailblazers", URL: "https://www.trailblazerschampionships.com/fixtures", Enabled: true},
	{Key: "your_horse_live", DisplayName: "Your Horse Live", URL: "https://www.yourhorselive.co.uk/", Enabled: false},
}

// Venues 场地种子：规范化名、邮编、坐标（已知时）、别名
var Venues = []VenueSeed{
	{CanonicalName: "Arena UK", Postcode: "NG32 2EF", Latitude: 52.9634, Longitude: -0.6474,
		Aliases: []string{"Arena Uk Grantham"}},
	{CanonicalName: "Addington", Postcode: "MK18 2JR", Latitude: 51.9686, Longitude: -0.9425,
		Aliases: []string{"Addington Manor", "Addington Equestrian"}},
	{CanonicalName: "Allens Hill Competition Centre", Postcode: "WR10 2DH", Latitude: 52.1366, Longitude: -2.0882,
		Aliases: []string{"Allens Hill"}},
	{CanonicalName: "Abbey", Postcode: "L40 1SR", Latitude: 53.5903, Longitude: -2.8573,
		Aliases: []string{"Abbey Farm Ormskirk"}},
	{CanonicalName: "Aintree", Postcode: "L9 5AS", Latitude: 53.4768, Longitude: -2.9404,
		Aliases: []string{"Aintree International"}},
	{CanonicalName: "Ashwood", Postcode: "ST18 0DF",
		Aliases: []string{"Ashwood Stafford"}},
	{CanonicalName: "Bolesworth", Postcode: "CH3 9HQ", Latitude: 53.1124, Longitude: -2.7697,
		Aliases: []string{"Bolesworth Castle", "Bolesworth International"}},
	{CanonicalName: "Brook", Postcode: "RM4 1JU",
		Aliases: []string{"Brook Farm Training Centre"}},
	{CanonicalName: "Chatsworth", Postcode: "DE45 1PP", Latitude: 53.2275, Longitude: -1.6108,
		Aliases: []string{"Chatsworth House"}},
	{CanonicalName: "Dean Valley", Postcode: "SK10 4TF",
		Aliases: []string{"Dean Valley Macclesfield"}},
	{CanonicalName: "Eland Lodge", Postcode: "DE13 8AS", Latitude: 52.8346, Longitude: -1.7712,
		Aliases: []string{"Eland Lodge Polo"}},
	{CanonicalName: "Epworth", Postcode: "DN9 1LQ",
		Aliases: []string{"Epworth Doncaster"}},
	{CanonicalName: "Hartpury", Postcode: "GL19 3BE", Latitude: 51.9116, Longitude: -2.3046,
		Aliases: []string{"Hartpury University", "Hartpury College"}},
	{CanonicalName: "Hickstead", Postcode: "RH17 5NU", Latitude: 50.9546, Longitude: -0.1808,
		Aliases: []string{"The All England Jumping Course", "All England Jumping Course Hickstead"}},
	{CanonicalName: "Higher Farm, Cheshire", Postcode: "CW6 9NW",
		Aliases: nil},
	{CanonicalName: "Hope Valley", Postcode: "S33 6RW",
		Aliases: nil},
	{CanonicalName: "Keysoe", Postcode: "MK44 2JP", Latitude: 52.2515, Longitude: -0.4331,
		Aliases: []string{"Keysoe International", "The College EC Keysoe"}},
	{CanonicalName: "Kelsall Hill", Postcode: "CW6 0SR", Latitude: 53.2136, Longitude: -2.7129,
		Aliases: nil},
	{CanonicalName: "Morris", Postcode: "KA1 5HW",
		Aliases: []string{"Morris EC"}},
	{CanonicalName: "Northallerton", Postcode: "DL7 9PW",
		Aliases: []string{"NVEC", "Northallerton Venue"}},
	{CanonicalName: "Onley Grounds", Postcode: "CV23 8AJ", Latitude: 52.3419, Longitude: -1.3065,
		Aliases: nil},
	{CanonicalName: "Osberton", Postcode: "S81 0UF", Latitude: 53.3332, Longitude: -1.0641,
		Aliases: []string{"Osberton International"}},
	{CanonicalName: "Pickering Grange", Postcode: "LE67 2AP",
		Aliases: []string{"Pickering Grange Farm"}},
	{CanonicalName: "Solihull", Postcode: "B92 0LB", Latitude: 52.4094, Longitude: -1.7169,
		Aliases: []string{"Solihull Riding Club"}},
	{CanonicalName: "South View", Postcode: "CW11 3QQ", Latitude: 53.1664, Longitude: -2.3912,
		Aliases: []string{"Southview", "South View Competition & Training Centre"}},
	{CanonicalName: "Sykehouse", Postcode: "DN14 9AS",
		Aliases: []string{"Sykehouse Arena"}},
	{CanonicalName: "Vale View", Postcode: "LE14 3SP", Latitude: 52.7855, Longitude: -0.9384,
		Aliases: nil},
	{CanonicalName: "Wellington Riding", Postcode: "RG27 0LJ", Latitude: 51.3124, Longitude: -0.9453,
		Aliases: []string{"Wellington"}},
	{CanonicalName: "Windsor", Postcode: "SL4 1NF", Latitude: 51.4817, Longitude: -0.6045,
		Aliases: []string{"Royal Windsor", "Windsor Home Park"}},
	{CanonicalName: "Tbc", Aliases: nil},
}

// AmbiguousNames 常见到会误并的短名：没有邮编佐证时跳过别名匹配
var AmbiguousNames = map[string]bool{
	"Abbey":       true,
	"Brook":       true,
	"Home":        true,
	"Hall":        true,
	"Manor":       true,
	"Mill":        true,
	"Grange":      true,
	"Park":        true,
	"The College": true,
	"Tbc":         true,
}
