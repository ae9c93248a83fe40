package alerts

import (
	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/ovapi/bison-gtfsrt/pkg/bison"
)

var subReasonCauses = map[bison.SubReasonType]gtfs.Alert_Cause{
	bison.SubReasonAanrijding:           gtfs.Alert_ACCIDENT,
	bison.SubReasonAanrijdingMetPersoon: gtfs.Alert_ACCIDENT,
	bison.SubReasonRouteVersperd:        gtfs.Alert_ACCIDENT,
	bison.SubReasonBrand:                gtfs.Alert_ACCIDENT,
	bison.SubReasonOngeval:              gtfs.Alert_ACCIDENT,
	bison.SubReasonOntsporing:           gtfs.Alert_ACCIDENT,
	bison.SubReasonAutoInSpoor:          gtfs.Alert_ACCIDENT,

	bison.SubReasonAsfalteringswerkzaamheden:   gtfs.Alert_MAINTENANCE,
	bison.SubReasonBestratingswerkzaamheden:    gtfs.Alert_MAINTENANCE,
	bison.SubReasonRioleringswerkzaamheden:     gtfs.Alert_MAINTENANCE,
	bison.SubReasonUitloopHerstelWerkzaamheden: gtfs.Alert_MAINTENANCE,
	bison.SubReasonUitloopWerkzaamheden:        gtfs.Alert_MAINTENANCE,
	bison.SubReasonWegwerkzaamheden:            gtfs.Alert_MAINTENANCE,
	bison.SubReasonWerkzaamheden:               gtfs.Alert_MAINTENANCE,

	bison.SubReasonBlikseminslag:    gtfs.Alert_WEATHER,
	bison.SubReasonIJsgang:          gtfs.Alert_WEATHER,
	bison.SubReasonIJzel:            gtfs.Alert_WEATHER,
	bison.SubReasonGladdeSporen:     gtfs.Alert_WEATHER,
	bison.SubReasonSneeuw:           gtfs.Alert_WEATHER,
	bison.SubReasonStorm:            gtfs.Alert_WEATHER,
	bison.SubReasonGladheid:         gtfs.Alert_WEATHER,
	bison.SubReasonOmgevallenBomen:  gtfs.Alert_WEATHER,
	bison.SubReasonBommelding:       gtfs.Alert_POLICE_ACTIVITY,
	bison.SubReasonMensenOpDeRoute:  gtfs.Alert_POLICE_ACTIVITY,
	bison.SubReasonLastVanDePolitie: gtfs.Alert_POLICE_ACTIVITY,
	bison.SubReasonOntruiming:       gtfs.Alert_POLICE_ACTIVITY,

	// public events
	bison.SubReasonBraderie:         gtfs.Alert_HOLIDAY,
	bison.SubReasonBloemencorso:     gtfs.Alert_HOLIDAY,
	bison.SubReasonCarnaval:         gtfs.Alert_HOLIDAY,
	bison.SubReasonMarathon:         gtfs.Alert_HOLIDAY,
	bison.SubReasonHerdenking:       gtfs.Alert_HOLIDAY,
	bison.SubReasonAvondvierdaagse:  gtfs.Alert_HOLIDAY,
	bison.SubReasonJaarmarkt:        gtfs.Alert_HOLIDAY,
	bison.SubReasonWielerronde:      gtfs.Alert_HOLIDAY,
	bison.SubReasonVoetbalwedstrijd: gtfs.Alert_HOLIDAY,
	bison.SubReasonKermis:           gtfs.Alert_HOLIDAY,
	bison.SubReasonOptocht:          gtfs.Alert_HOLIDAY,
	bison.SubReasonWateroverlast:    gtfs.Alert_HOLIDAY,
	bison.SubReasonKoninginnedag:    gtfs.Alert_HOLIDAY,

	bison.SubReasonDefectMaterieel:                  gtfs.Alert_TECHNICAL_PROBLEM,
	bison.SubReasonDefectSpoor:                      gtfs.Alert_TECHNICAL_PROBLEM,
	bison.SubReasonSeinEnWisselstoring:              gtfs.Alert_TECHNICAL_PROBLEM,
	bison.SubReasonDefectViaduct:                    gtfs.Alert_TECHNICAL_PROBLEM,
	bison.SubReasonDefecteBovenleiding:              gtfs.Alert_TECHNICAL_PROBLEM,
	bison.SubReasonDefecteTrein:                     gtfs.Alert_TECHNICAL_PROBLEM,
	bison.SubReasonSeinstoring:                      gtfs.Alert_TECHNICAL_PROBLEM,
	bison.SubReasonDefecteBrug:                      gtfs.Alert_TECHNICAL_PROBLEM,
	bison.SubReasonWisselstoring:                    gtfs.Alert_TECHNICAL_PROBLEM,
	bison.SubReasonStoringInVerkeersleidingssysteem: gtfs.Alert_TECHNICAL_PROBLEM,
	bison.SubReasonOverwegstoring:                   gtfs.Alert_TECHNICAL_PROBLEM,

	bison.SubReasonEerdereVerstoring:     gtfs.Alert_OTHER_CAUSE,
	bison.SubReasonExtremeDrukte:         gtfs.Alert_OTHER_CAUSE,
	bison.SubReasonFile:                  gtfs.Alert_OTHER_CAUSE,
	bison.SubReasonHerstelWerkzaamheden:  gtfs.Alert_OTHER_CAUSE,
	bison.SubReasonLastVanDeBrandweer:    gtfs.Alert_OTHER_CAUSE,
	bison.SubReasonLogistiekeProblemen:   gtfs.Alert_OTHER_CAUSE,
	bison.SubReasonTekortAanMaterieel:    gtfs.Alert_OTHER_CAUSE,
	bison.SubReasonTekortAanPersoneel:    gtfs.Alert_OTHER_CAUSE,
	bison.SubReasonTweedeWereldoorlogBom: gtfs.Alert_OTHER_CAUSE,
	bison.SubReasonStroomstoring:         gtfs.Alert_OTHER_CAUSE,
	bison.SubReasonStremming:             gtfs.Alert_OTHER_CAUSE,
	bison.SubReasonSnelheidsbeperkingen:  gtfs.Alert_OTHER_CAUSE,
	bison.SubReasonVeeOpDeRoute:          gtfs.Alert_OTHER_CAUSE,
	bison.SubReasonStaking:               gtfs.Alert_STRIKE,
	bison.SubReasonStiptheidsacties:      gtfs.Alert_STRIKE,
	bison.SubReasonVakbondsacties:        gtfs.Alert_STRIKE,
	bison.SubReasonMogelijkeStaking:      gtfs.Alert_STRIKE,
	bison.SubReasonPassagierOnwel:        gtfs.Alert_MEDICAL_EMERGENCY,
	bison.SubReasonNull:                  gtfs.Alert_UNKNOWN_CAUSE,
	bison.SubReasonOnbekend:              gtfs.Alert_UNKNOWN_CAUSE,
}

var subMeasureEffects = map[bison.SubMeasureType]gtfs.Alert_Effect{
	bison.SubMeasureBus:            gtfs.Alert_MODIFIED_SERVICE,
	bison.SubMeasureSpecialStop:    gtfs.Alert_MODIFIED_SERVICE,
	bison.SubMeasureCancelledStops: gtfs.Alert_DETOUR,
	bison.SubMeasureDiversion:      gtfs.Alert_DETOUR,
	bison.SubMeasureDivertedTrain:  gtfs.Alert_DETOUR,
	bison.SubMeasureRouteModified:  gtfs.Alert_DETOUR,
	bison.SubMeasureExtraTransport: gtfs.Alert_ADDITIONAL_SERVICE,
	bison.SubMeasureLimitedBus:     gtfs.Alert_REDUCED_SERVICE,
	bison.SubMeasureLimitedTrain:   gtfs.Alert_REDUCED_SERVICE,
	bison.SubMeasureNone:           gtfs.Alert_OTHER_EFFECT,
	bison.SubMeasureNoBus:          gtfs.Alert_NO_SERVICE,
	bison.SubMeasureNoTrain:        gtfs.Alert_NO_SERVICE,
	bison.SubMeasureUnknown:        gtfs.Alert_UNKNOWN_EFFECT,
}

var subEffectEffects = map[bison.SubEffectType]gtfs.Alert_Effect{
	bison.SubEffectDecreasedService: gtfs.Alert_REDUCED_SERVICE,
	bison.SubEffectDelayedDiversion: gtfs.Alert_SIGNIFICANT_DELAYS,
	bison.SubEffectDelay5:           gtfs.Alert_SIGNIFICANT_DELAYS,
	bison.SubEffectDelay510:         gtfs.Alert_SIGNIFICANT_DELAYS,
	bison.SubEffectDelay10:          gtfs.Alert_SIGNIFICANT_DELAYS,
	bison.SubEffectDelay1015:        gtfs.Alert_SIGNIFICANT_DELAYS,
	bison.SubEffectDelay15:          gtfs.Alert_SIGNIFICANT_DELAYS,
	bison.SubEffectDelay1530:        gtfs.Alert_SIGNIFICANT_DELAYS,
	bison.SubEffectDelay30:          gtfs.Alert_SIGNIFICANT_DELAYS,
	bison.SubEffectDelay3060:        gtfs.Alert_SIGNIFICANT_DELAYS,
	bison.SubEffectDelay45:          gtfs.Alert_SIGNIFICANT_DELAYS,
	bison.SubEffectDelay60:          gtfs.Alert_SIGNIFICANT_DELAYS,
	bison.SubEffectDelay60Plus:      gtfs.Alert_SIGNIFICANT_DELAYS,
	bison.SubEffectDelayUnknown:     gtfs.Alert_SIGNIFICANT_DELAYS,
	bison.SubEffectDisrupted:        gtfs.Alert_MODIFIED_SERVICE,
	bison.SubEffectDiversion:        gtfs.Alert_DETOUR,
	bison.SubEffectLineCancel:       gtfs.Alert_NO_SERVICE,
	bison.SubEffectNoService:        gtfs.Alert_NO_SERVICE,
	bison.SubEffectNoTrains:         gtfs.Alert_NO_SERVICE,
	bison.SubEffectStopCancel:       gtfs.Alert_NO_SERVICE,
	bison.SubEffectUnknown:          gtfs.Alert_UNKNOWN_EFFECT,
}

// Cause classifies the message by its detailed reason, falling back to the coarse reason.
func Cause(message *bison.KV15Message) gtfs.Alert_Cause {
	if message.SubReasonType != nil {
		if cause, ok := subReasonCauses[*message.SubReasonType]; ok {
			return cause
		}
		return gtfs.Alert_UNKNOWN_CAUSE
	}

	if message.ReasonType != nil {
		switch *message.ReasonType {
		case bison.ReasonTypeGeneral:
			return gtfs.Alert_OTHER_CAUSE
		case bison.ReasonTypeUndefined, bison.ReasonTypeUnknown:
			return gtfs.Alert_UNKNOWN_CAUSE
		}
	}

	return gtfs.Alert_UNKNOWN_CAUSE
}

// Effect classifies the message by its detailed measure, then its detailed effect.
func Effect(message *bison.KV15Message) gtfs.Alert_Effect {
	if message.SubMeasureType != nil {
		if effect, ok := subMeasureEffects[*message.SubMeasureType]; ok {
			return effect
		}
	}

	if message.SubEffectType != nil {
		if effect, ok := subEffectEffects[*message.SubEffectType]; ok {
			return effect
		}
	}

	return gtfs.Alert_UNKNOWN_EFFECT
}
