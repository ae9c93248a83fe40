package bison

// SubReasonType is the detailed cause classification of a KV15 message.
type SubReasonType string

const (
	SubReasonAanrijding                       SubReasonType = "Aanrijding"
	SubReasonAanrijdingMetPersoon             SubReasonType = "Aanrijding_met_Persoon"
	SubReasonRouteVersperd                    SubReasonType = "Route_versperd"
	SubReasonBrand                            SubReasonType = "Brand"
	SubReasonOngeval                          SubReasonType = "Ongeval"
	SubReasonOntsporing                       SubReasonType = "Ontsporing"
	SubReasonAutoInSpoor                      SubReasonType = "Auto_in_spoor"
	SubReasonAsfalteringswerkzaamheden        SubReasonType = "Asfalteringswerkzaamheden"
	SubReasonBestratingswerkzaamheden         SubReasonType = "Bestratingswerkzaamheden"
	SubReasonRioleringswerkzaamheden          SubReasonType = "Rioleringswerkzaamheden"
	SubReasonUitloopHerstelWerkzaamheden      SubReasonType = "Uitloop_herstel_werkzaamheden"
	SubReasonUitloopWerkzaamheden             SubReasonType = "Uitloop_werkzaamheden"
	SubReasonWegwerkzaamheden                 SubReasonType = "Wegwerkzaamheden"
	SubReasonWerkzaamheden                    SubReasonType = "Werkzaamheden"
	SubReasonBlikseminslag                    SubReasonType = "Blikseminslag"
	SubReasonIJsgang                          SubReasonType = "IJsgang"
	SubReasonIJzel                            SubReasonType = "IJzel"
	SubReasonGladdeSporen                     SubReasonType = "Gladde_sporen"
	SubReasonSneeuw                           SubReasonType = "Sneeuw"
	SubReasonStorm                            SubReasonType = "Storm"
	SubReasonGladheid                         SubReasonType = "Gladheid"
	SubReasonOmgevallenBomen                  SubReasonType = "Omgevallen_bomen"
	SubReasonBommelding                       SubReasonType = "Bommelding"
	SubReasonMensenOpDeRoute                  SubReasonType = "Mensen_op_de_route"
	SubReasonLastVanDePolitie                 SubReasonType = "Last_van_de_Politie"
	SubReasonOntruiming                       SubReasonType = "Ontruiming"
	SubReasonBraderie                         SubReasonType = "Braderie"
	SubReasonBloemencorso                     SubReasonType = "Bloemencorso"
	SubReasonCarnaval                         SubReasonType = "Carnaval"
	SubReasonMarathon                         SubReasonType = "Marathon"
	SubReasonHerdenking                       SubReasonType = "Herdenking"
	SubReasonAvondvierdaagse                  SubReasonType = "Avondvierdaagse"
	SubReasonJaarmarkt                        SubReasonType = "Jaarmarkt"
	SubReasonWielerronde                      SubReasonType = "Wielerronde"
	SubReasonVoetbalwedstrijd                 SubReasonType = "Voetbalwedstrijd"
	SubReasonKermis                           SubReasonType = "Kermis"
	SubReasonOptocht                          SubReasonType = "Optocht"
	SubReasonWateroverlast                    SubReasonType = "Wateroverlast"
	SubReasonKoninginnedag                    SubReasonType = "Koninginnedag"
	SubReasonDefectMaterieel                  SubReasonType = "Defect_materieel"
	SubReasonDefectSpoor                      SubReasonType = "Defect_spoor"
	SubReasonSeinEnWisselstoring              SubReasonType = "Sein_en_wisselstoring"
	SubReasonDefectViaduct                    SubReasonType = "Defect_viaduct"
	SubReasonDefecteBovenleiding              SubReasonType = "Defecte_bovenleiding"
	SubReasonDefecteTrein                     SubReasonType = "Defecte_trein"
	SubReasonSeinstoring                      SubReasonType = "Seinstoring"
	SubReasonDefecteBrug                      SubReasonType = "Defecte_brug"
	SubReasonWisselstoring                    SubReasonType = "Wisselstoring"
	SubReasonStoringInVerkeersleidingssysteem SubReasonType = "Storing_in_verkeersleidingssysteem"
	SubReasonOverwegstoring                   SubReasonType = "Overwegstoring"
	SubReasonEerdereVerstoring                SubReasonType = "Eerdere_verstoring"
	SubReasonExtremeDrukte                    SubReasonType = "Extreme_drukte"
	SubReasonFile                             SubReasonType = "File"
	SubReasonHerstelWerkzaamheden             SubReasonType = "Herstel_werkzaamheden"
	SubReasonLastVanDeBrandweer               SubReasonType = "Last_van_de_Brandweer"
	SubReasonLogistiekeProblemen              SubReasonType = "Logistieke_problemen"
	SubReasonTekortAanMaterieel               SubReasonType = "Tekort_aan_materieel"
	SubReasonTekortAanPersoneel               SubReasonType = "Tekort_aan_personeel"
	SubReasonTweedeWereldoorlogBom            SubReasonType = "Tweede_wereldoorlog_bom"
	SubReasonStroomstoring                    SubReasonType = "Stroomstoring"
	SubReasonStremming                        SubReasonType = "Stremming"
	SubReasonSnelheidsbeperkingen             SubReasonType = "Snelheidsbeperkingen"
	SubReasonVeeOpDeRoute                     SubReasonType = "Vee_op_de_route"
	SubReasonStaking                          SubReasonType = "Staking"
	SubReasonStiptheidsacties                 SubReasonType = "Stiptheidsacties"
	SubReasonVakbondsacties                   SubReasonType = "Vakbondsacties"
	SubReasonMogelijkeStaking                 SubReasonType = "Mogelijke_staking"
	SubReasonPassagierOnwel                   SubReasonType = "Passagier_onwel"
	SubReasonNull                             SubReasonType = "NULL"
	SubReasonOnbekend                         SubReasonType = "Onbekend"
)

// SubEffectType is the detailed effect classification of a KV15 message.
type SubEffectType string

const (
	SubEffectDecreasedService SubEffectType = "DECREASED_SERVICE"
	SubEffectDelayedDiversion SubEffectType = "DELAYED_DIVERSION"
	SubEffectDelay5           SubEffectType = "DELAY_5"
	SubEffectDelay510         SubEffectType = "DELAY_510"
	SubEffectDelay10          SubEffectType = "DELAY_10"
	SubEffectDelay1015        SubEffectType = "DELAY_1015"
	SubEffectDelay15          SubEffectType = "DELAY_15"
	SubEffectDelay1530        SubEffectType = "DELAY_1530"
	SubEffectDelay30          SubEffectType = "DELAY_30"
	SubEffectDelay3060        SubEffectType = "DELAY_3060"
	SubEffectDelay45          SubEffectType = "DELAY_45"
	SubEffectDelay60          SubEffectType = "DELAY_60"
	SubEffectDelay60Plus      SubEffectType = "DELAY_60PLUS"
	SubEffectDelayUnknown     SubEffectType = "DELAY_UNKNOWN"
	SubEffectDisrupted        SubEffectType = "DISRUPTED"
	SubEffectDiversion        SubEffectType = "DIVERSION"
	SubEffectLineCancel       SubEffectType = "LINECANCEL"
	SubEffectNoService        SubEffectType = "NO_SERVICE"
	SubEffectNoTrains         SubEffectType = "NO_TRAINS"
	SubEffectStopCancel       SubEffectType = "STOPCANCEL"
	SubEffectUnknown          SubEffectType = "UNKNOWN"
)

// SubMeasureType is the detailed measure classification of a KV15 message.
type SubMeasureType string

const (
	SubMeasureBus            SubMeasureType = "BUS"
	SubMeasureCancelledStops SubMeasureType = "CANCELLED_STOPS"
	SubMeasureDiversion      SubMeasureType = "DIVERSION"
	SubMeasureDivertedTrain  SubMeasureType = "DIVERTED_TRAIN"
	SubMeasureExtraTransport SubMeasureType = "EXTRA_TRANSPORT"
	SubMeasureLimitedBus     SubMeasureType = "LIMITED_BUS"
	SubMeasureLimitedTrain   SubMeasureType = "LIMITED_TRAIN"
	SubMeasureNone           SubMeasureType = "NONE"
	SubMeasureNoBus          SubMeasureType = "NO_BUS"
	SubMeasureNoTrain        SubMeasureType = "NO_TRAIN"
	SubMeasureRouteModified  SubMeasureType = "ROUTEMODIFIED"
	SubMeasureSpecialStop    SubMeasureType = "SPECIAL_STOP"
	SubMeasureUnknown        SubMeasureType = "UNKNOWN"
)

var AllSubReasonTypes = []SubReasonType{
	SubReasonAanrijding,
	SubReasonAanrijdingMetPersoon,
	SubReasonRouteVersperd,
	SubReasonBrand,
	SubReasonOngeval,
	SubReasonOntsporing,
	SubReasonAutoInSpoor,
	SubReasonAsfalteringswerkzaamheden,
	SubReasonBestratingswerkzaamheden,
	SubReasonRioleringswerkzaamheden,
	SubReasonUitloopHerstelWerkzaamheden,
	SubReasonUitloopWerkzaamheden,
	SubReasonWegwerkzaamheden,
	SubReasonWerkzaamheden,
	SubReasonBlikseminslag,
	SubReasonIJsgang,
	SubReasonIJzel,
	SubReasonGladdeSporen,
	SubReasonSneeuw,
	SubReasonStorm,
	SubReasonGladheid,
	SubReasonOmgevallenBomen,
	SubReasonBommelding,
	SubReasonMensenOpDeRoute,
	SubReasonLastVanDePolitie,
	SubReasonOntruiming,
	SubReasonBraderie,
	SubReasonBloemencorso,
	SubReasonCarnaval,
	SubReasonMarathon,
	SubReasonHerdenking,
	SubReasonAvondvierdaagse,
	SubReasonJaarmarkt,
	SubReasonWielerronde,
	SubReasonVoetbalwedstrijd,
	SubReasonKermis,
	SubReasonOptocht,
	SubReasonWateroverlast,
	SubReasonKoninginnedag,
	SubReasonDefectMaterieel,
	SubReasonDefectSpoor,
	SubReasonSeinEnWisselstoring,
	SubReasonDefectViaduct,
	SubReasonDefecteBovenleiding,
	SubReasonDefecteTrein,
	SubReasonSeinstoring,
	SubReasonDefecteBrug,
	SubReasonWisselstoring,
	SubReasonStoringInVerkeersleidingssysteem,
	SubReasonOverwegstoring,
	SubReasonEerdereVerstoring,
	SubReasonExtremeDrukte,
	SubReasonFile,
	SubReasonHerstelWerkzaamheden,
	SubReasonLastVanDeBrandweer,
	SubReasonLogistiekeProblemen,
	SubReasonTekortAanMaterieel,
	SubReasonTekortAanPersoneel,
	SubReasonTweedeWereldoorlogBom,
	SubReasonStroomstoring,
	SubReasonStremming,
	SubReasonSnelheidsbeperkingen,
	SubReasonVeeOpDeRoute,
	SubReasonStaking,
	SubReasonStiptheidsacties,
	SubReasonVakbondsacties,
	SubReasonMogelijkeStaking,
	SubReasonPassagierOnwel,
	SubReasonNull,
	SubReasonOnbekend,
}

var AllSubEffectTypes = []SubEffectType{
	SubEffectDecreasedService,
	SubEffectDelayedDiversion,
	SubEffectDelay5,
	SubEffectDelay510,
	SubEffectDelay10,
	SubEffectDelay1015,
	SubEffectDelay15,
	SubEffectDelay1530,
	SubEffectDelay30,
	SubEffectDelay3060,
	SubEffectDelay45,
	SubEffectDelay60,
	SubEffectDelay60Plus,
	SubEffectDelayUnknown,
	SubEffectDisrupted,
	SubEffectDiversion,
	SubEffectLineCancel,
	SubEffectNoService,
	SubEffectNoTrains,
	SubEffectStopCancel,
	SubEffectUnknown,
}

var AllSubMeasureTypes = []SubMeasureType{
	SubMeasureBus,
	SubMeasureCancelledStops,
	SubMeasureDiversion,
	SubMeasureDivertedTrain,
	SubMeasureExtraTransport,
	SubMeasureLimitedBus,
	SubMeasureLimitedTrain,
	SubMeasureNone,
	SubMeasureNoBus,
	SubMeasureNoTrain,
	SubMeasureRouteModified,
	SubMeasureSpecialStop,
	SubMeasureUnknown,
}

var (
	subReasonTypes  = indexEnum(AllSubReasonTypes)
	subEffectTypes  = indexEnum(AllSubEffectTypes)
	subMeasureTypes = indexEnum(AllSubMeasureTypes)
)

func indexEnum[T ~string](values []T) map[string]T {
	index := make(map[string]T, len(values))
	for _, value := range values {
		index[string(value)] = value
	}
	return index
}

// ParseSubReasonType returns nil for values outside the enumeration.
func ParseSubReasonType(value string) *SubReasonType {
	if subReasonType, ok := subReasonTypes[value]; ok {
		return &subReasonType
	}
	return nil
}

func ParseSubEffectType(value string) *SubEffectType {
	if subEffectType, ok := subEffectTypes[value]; ok {
		return &subEffectType
	}
	return nil
}

func ParseSubMeasureType(value string) *SubMeasureType {
	if subMeasureType, ok := subMeasureTypes[value]; ok {
		return &subMeasureType
	}
	return nil
}
