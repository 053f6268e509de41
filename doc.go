// Copyright 2023 uhppoted@twyst.co.za. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package openproject-app-sheets creates OpenProject work packages from a work breakdown structure (WBS) stored
as a Google Sheets worksheet.

Each row of the worksheet is a WBS record with a WBS ID, an optional parent WBS ID, a type (Phase or Task), a
name, an optional description and optional estimated hours. The records are created as work packages in an
OpenProject project, parents before children, so that each work package can be linked to its parent.

openproject-app-sheets supports the following commands:

  - authorise, to authorise application access to Google Sheets worksheets
  - get, to download a WBS worksheet as a TSV file
  - put, to store a TSV file to a Google Sheets worksheet
  - import, to create the work packages for a WBS worksheet (or TSV file) in an OpenProject project
  - cleanup, to delete all the work packages in an OpenProject project
  - diagnose, to list the projects and work package types available to the configured API key
*/
package sheets
