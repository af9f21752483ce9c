// Package services contains the application services of the EUTYPE client.
//
//   - SessionGate validates the session at startup, demotes it when the
//     gateway reports a rejection, and builds login portal redirects.
//   - DocumentStore loads, saves and creates documents stored as Document
//     Envelopes in the file service.
//   - FileService backs the File Picker: filtered listings, storage usage,
//     rename, delete, download and locally remembered recent documents.
//
// Services never navigate. Operations that end in a change of view return a
// models.Navigation for the shell to carry out.
package services
