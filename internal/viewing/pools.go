// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package viewing

import "github.com/audiencegrid/audiencegrid/internal/models"

// weightedString is one entry of a discrete weighted distribution.
type weightedString struct {
	value  string
	weight int
}

var devicePool = []weightedString{
	{string(models.DeviceSmartTV), 40},
	{string(models.DeviceMobile), 30},
	{string(models.DeviceWeb), 18},
	{string(models.DeviceTablet), 12},
}

// osByDevice keeps OS names plausible for each device category.
var osByDevice = map[string][]string{
	string(models.DeviceSmartTV): {"Tizen", "webOS", "Android TV"},
	string(models.DeviceMobile):  {"Android", "iOS"},
	string(models.DeviceWeb):     {"Windows", "macOS", "Linux"},
	string(models.DeviceTablet):  {"iPadOS", "Android"},
}

var connectionPool = []weightedString{
	{"fiber", 45},
	{"adsl", 20},
	{"4g", 22},
	{"5g", 10},
	{"wifi_public", 3},
}

var eventTypePool = []weightedString{
	{string(models.EventPlay), 40},
	{string(models.EventPlayStart), 25},
	{string(models.EventPlayEnd), 15},
	{string(models.EventPause), 12},
	{string(models.EventSeek), 8},
}

// isp holds a French provider with its characteristic public IPv4 first
// octet, so ip addresses correlate with the ISP the way real access logs do.
type isp struct {
	name       string
	firstOctet int
	weight     int
}

var ispPool = []isp{
	{"Orange", 81, 35},
	{"Free", 82, 25},
	{"Bouygues Telecom", 90, 20},
	{"SFR", 77, 20},
}

// geo ties a region to one of its cities.
type geo struct {
	region string
	city   string
}

var geoPool = []geo{
	{"Île-de-France", "Paris"},
	{"Île-de-France", "Boulogne-Billancourt"},
	{"Auvergne-Rhône-Alpes", "Lyon"},
	{"Auvergne-Rhône-Alpes", "Grenoble"},
	{"Provence-Alpes-Côte d'Azur", "Marseille"},
	{"Provence-Alpes-Côte d'Azur", "Nice"},
	{"Occitanie", "Toulouse"},
	{"Occitanie", "Montpellier"},
	{"Nouvelle-Aquitaine", "Bordeaux"},
	{"Hauts-de-France", "Lille"},
	{"Grand Est", "Strasbourg"},
	{"Pays de la Loire", "Nantes"},
	{"Bretagne", "Rennes"},
}

var channels = []string{"TF1", "TMC", "TFX", "TF1 Séries Films", "LCI"}
