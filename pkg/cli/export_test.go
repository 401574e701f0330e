package cli

var PrepareResponseSheet = prepareResponseSheet
